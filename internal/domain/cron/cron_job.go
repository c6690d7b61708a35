package cron

import (
	"context"
	"sync"
	"time"

	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex   sync.Mutex
	running sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	stopped chan struct{}
	once    sync.Once
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{
		jobs:    make(map[CronJob]*time.Timer),
		stopped: make(chan struct{}),
	}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobs[job] = nil
}

// Start runs the registered jobs until ctx is done or the manager is
// cancelled, then waits for the running jobs to finish.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	jobs := make([]CronJob, 0, len(m.jobs))
	for job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			m.running.Add(1)
			go m.run(ctx, job)
		} else {
			m.schedule(ctx, job)
		}
	}

	select {
	case <-ctx.Done():
		m.Cancel(ctx)
	case <-m.stopped:
	}

	m.running.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, timer := range m.jobs {
		if timer != nil {
			timer.Stop()
		}
	}

	// Clear all jobs to not schedule them again.
	m.jobs = make(map[CronJob]*time.Timer)
	m.once.Do(func() { close(m.stopped) })
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	defer m.running.Done()

	xcontext.Logger(ctx).Debugf("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Debugf("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Only schedule jobs which exist in the job list.
	if _, ok := m.jobs[job]; !ok {
		return
	}

	m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() {
		m.mutex.Lock()
		if _, ok := m.jobs[job]; !ok {
			m.mutex.Unlock()
			return
		}
		m.running.Add(1)
		m.mutex.Unlock()

		m.run(ctx, job)
	})
}
