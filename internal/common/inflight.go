package common

import (
	"github.com/puzpuzpuz/xsync"
	"github.com/spdm-lab/rewards/pkg/errorx"
)

// InFlightGuard lets only one call per key run at a time, a concurrent call
// with the same key is rejected instead of queued.
type InFlightGuard struct {
	running *xsync.MapOf[string, struct{}]
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{running: xsync.NewMapOf[struct{}]()}
}

// Acquire returns a release function, or an InProgress error if the key is
// already held.
func (g *InFlightGuard) Acquire(key string) (func(), error) {
	if _, loaded := g.running.LoadOrStore(key, struct{}{}); loaded {
		return nil, errorx.New(errorx.InProgress, "Please wait for the previous request to finish")
	}

	return func() { g.running.Delete(key) }, nil
}
