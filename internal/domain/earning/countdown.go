package earning

import (
	"sync"
	"time"
)

const CountdownInterval = time.Second

// Countdown recomputes the remaining time on every tick until it reaches
// zero, then calls onReady exactly once and stops by itself.
type Countdown struct {
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

func StartCountdown(
	interval time.Duration,
	remaining func() time.Duration,
	onTick func(remaining time.Duration),
	onReady func(),
) *Countdown {
	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go c.run(interval, remaining, onTick, onReady)
	return c
}

func (c *Countdown) run(
	interval time.Duration,
	remaining func() time.Duration,
	onTick func(time.Duration),
	onReady func(),
) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r := remaining()
		if r <= 0 {
			if onReady != nil {
				onReady()
			}
			return
		}

		if onTick != nil {
			onTick(r)
		}

		select {
		case <-ticker.C:
		case <-c.stop:
			return
		}
	}
}

// Stop cancels the countdown, onReady is never called after Stop returns.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}

// Done is closed when the countdown has finished or was stopped.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
