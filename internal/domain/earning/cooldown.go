package earning

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

const ActionSpin = "spin"

type CooldownStatus struct {
	Allowed   bool
	Remaining time.Duration
}

// Err returns a CooldownActive error describing the wait, or nil if the
// action is allowed.
func (s CooldownStatus) Err() error {
	if s.Allowed {
		return nil
	}

	return errorx.New(errorx.CooldownActive,
		"Please wait %s before trying again", dateutil.FormatClock(s.Remaining))
}

// CooldownTracker stores the last trigger time of every action in the store
// of a single owner.
type CooldownTracker struct {
	kv  storage.KV
	now func() time.Time
}

func NewCooldownTracker(kv storage.KV, now func() time.Time) *CooldownTracker {
	if now == nil {
		now = time.Now
	}

	return &CooldownTracker{kv: kv, now: now}
}

// TriggerKey is the storage key of the last trigger time of action, the
// spin action is stored under lastSpinTime.
func TriggerKey(action string) string {
	if action == "" {
		return "lastTime"
	}

	return "last" + strings.ToUpper(action[:1]) + action[1:] + "Time"
}

// CanTrigger reports whether at least cooldown elapsed since the last
// trigger. A failing store counts as no prior trigger.
func (t *CooldownTracker) CanTrigger(ctx context.Context, action string, cooldown time.Duration) CooldownStatus {
	last, ok := t.lastTrigger(ctx, action)
	if !ok {
		return CooldownStatus{Allowed: true}
	}

	elapsed := t.now().Sub(last)
	if elapsed >= cooldown {
		return CooldownStatus{Allowed: true}
	}

	remaining := cooldown - elapsed
	if remaining > cooldown {
		remaining = cooldown
	}

	return CooldownStatus{Allowed: false, Remaining: remaining}
}

func (t *CooldownTracker) RecordTrigger(ctx context.Context, action string, at time.Time) error {
	return t.kv.Set(ctx, TriggerKey(action), strconv.FormatInt(at.UnixMilli(), 10))
}

func (t *CooldownTracker) lastTrigger(ctx context.Context, action string) (time.Time, bool) {
	value, err := t.kv.Get(ctx, TriggerKey(action))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot read the last trigger of %s: %v", action, err)
		}

		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid last trigger of %s: %v", action, err)
		return time.Time{}, false
	}

	return time.UnixMilli(ms), true
}
