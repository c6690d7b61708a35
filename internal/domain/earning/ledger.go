package earning

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
)

const (
	KeyLastRewardReset = "lastRewardReset"
	KeyRewardLedger    = "rewardLedger"
)

type LedgerState struct {
	Claimed map[string]bool `json:"claimed"`
	Total   int             `json:"total"`
}

func emptyLedgerState() LedgerState {
	return LedgerState{Claimed: map[string]bool{}}
}

// DailyLedger tracks which offers an owner claimed today and the total value
// claimed, both are cleared when the local day changes.
type DailyLedger struct {
	kv       storage.KV
	dailyCap int
	loc      *time.Location
	now      func() time.Time
}

func NewDailyLedger(kv storage.KV, dailyCap int, loc *time.Location, now func() time.Time) *DailyLedger {
	if loc == nil {
		loc = time.Local
	}

	if now == nil {
		now = time.Now
	}

	return &DailyLedger{kv: kv, dailyCap: dailyCap, loc: loc, now: now}
}

func (l *DailyLedger) DailyCap() int {
	return l.dailyCap
}

func (l *DailyLedger) today() string {
	return dateutil.DateString(l.now().In(l.loc))
}

// CheckReset clears the ledger if it was last reset on another day. It
// reports whether a reset happened.
func (l *DailyLedger) CheckReset(ctx context.Context) (bool, error) {
	_, reset, err := l.load(ctx)
	return reset, err
}

// State returns the ledger of today.
func (l *DailyLedger) State(ctx context.Context) (LedgerState, error) {
	state, _, err := l.load(ctx)
	return state, err
}

func (l *DailyLedger) IsClaimed(ctx context.Context, offerID string) (bool, error) {
	state, _, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	return state.Claimed[offerID], nil
}

func (l *DailyLedger) TotalClaimedToday(ctx context.Context) (int, error) {
	state, _, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	return state.Total, nil
}

// CanClaim returns an AlreadyClaimed or DailyLimitReached error if claiming
// offerID with value would be rejected.
func (l *DailyLedger) CanClaim(ctx context.Context, offerID string, value int) error {
	state, _, err := l.load(ctx)
	if err != nil {
		return err
	}

	return l.check(state, offerID, value)
}

func (l *DailyLedger) check(state LedgerState, offerID string, value int) error {
	if state.Claimed[offerID] {
		return errorx.New(errorx.AlreadyClaimed, "You have already claimed this reward today")
	}

	if state.Total+value > l.dailyCap {
		return errorx.New(errorx.DailyLimitReached,
			"Daily limit of %d coins reached, come back tomorrow", l.dailyCap)
	}

	return nil
}

// Claim marks offerID as claimed and adds value to the total. If the claim
// is rejected, the ledger is unchanged.
func (l *DailyLedger) Claim(ctx context.Context, offerID string, value int) error {
	state, _, err := l.load(ctx)
	if err != nil {
		return err
	}

	if err := l.check(state, offerID, value); err != nil {
		return err
	}

	state.Claimed[offerID] = true
	state.Total += value
	return l.save(ctx, l.today(), state)
}

func (l *DailyLedger) load(ctx context.Context) (LedgerState, bool, error) {
	today := l.today()

	lastReset, err := l.kv.Get(ctx, KeyLastRewardReset)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return LedgerState{}, false, err
	}

	if lastReset != today {
		state := emptyLedgerState()
		if err := l.save(ctx, today, state); err != nil {
			return LedgerState{}, false, err
		}

		return state, true, nil
	}

	raw, err := l.kv.Get(ctx, KeyRewardLedger)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return emptyLedgerState(), false, nil
		}

		return LedgerState{}, false, err
	}

	state := emptyLedgerState()
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return LedgerState{}, false, err
	}

	if state.Claimed == nil {
		state.Claimed = map[string]bool{}
	}

	return state, false, nil
}

// save writes the reset date and the ledger together, a reader never sees
// one without the other.
func (l *DailyLedger) save(ctx context.Context, date string, state LedgerState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return l.kv.MSet(ctx, map[string]string{
		KeyLastRewardReset: date,
		KeyRewardLedger:    string(b),
	})
}
