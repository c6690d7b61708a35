package pubsub

import (
	"context"
	"sync"
	"time"
)

// Local delivers packs to the handlers of the same process. It is used when
// no broker is configured.
type Local struct {
	mutex    sync.RWMutex
	handlers map[string][]SubscribeHandler
}

func NewLocal() *Local {
	return &Local{handlers: make(map[string][]SubscribeHandler)}
}

func (l *Local) Publish(ctx context.Context, topic string, pack *Pack) error {
	l.mutex.RLock()
	handlers := l.handlers[topic]
	l.mutex.RUnlock()

	now := time.Now()
	for _, h := range handlers {
		h(ctx, topic, pack, now)
	}

	return nil
}

// NewSubscriber registers handler for every given topic. The returned
// subscriber only starts receiving after Subscribe is called.
func (l *Local) NewSubscriber(topics []string, handler SubscribeHandler) Subscriber {
	return &localSubscriber{local: l, topics: topics, handler: handler}
}

type localSubscriber struct {
	local   *Local
	topics  []string
	handler SubscribeHandler
}

func (s *localSubscriber) Subscribe(ctx context.Context) {
	s.local.mutex.Lock()
	defer s.local.mutex.Unlock()

	for _, topic := range s.topics {
		s.local.handlers[topic] = append(s.local.handlers[topic], s.handler)
	}
}

func (s *localSubscriber) Stop(ctx context.Context) error {
	s.local.mutex.Lock()
	defer s.local.mutex.Unlock()

	for _, topic := range s.topics {
		delete(s.local.handlers, topic)
	}

	return nil
}
