package domain

import (
	"context"
	"strconv"
	"time"

	mathUtil "github.com/pkg/math"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

const (
	actionAfk          = "afk"
	actionAfkHeartbeat = "afkHeartbeat"

	// afkNamespace separates the afk ledger from the reward ledger of the same
	// owner.
	afkNamespace = "afk"
)

type AfkDomain interface {
	Heartbeat(context.Context, *model.AfkHeartbeatRequest) (*model.AfkHeartbeatResponse, error)
}

type afkDomain struct {
	kv             storage.KV
	balanceMutator client.BalanceMutator
	guard          *common.InFlightGuard
	now            func() time.Time
}

func NewAfkDomain(kv storage.KV, balanceMutator client.BalanceMutator) *afkDomain {
	return &afkDomain{
		kv:             kv,
		balanceMutator: balanceMutator,
		guard:          common.NewInFlightGuard(),
		now:            time.Now,
	}
}

// Heartbeat is sent periodically while the user stays on the afk page. Every
// full interval of continuous heartbeats earns coins until the daily cap. A
// gap longer than the interval plus the grace restarts the session.
func (d *afkDomain) Heartbeat(
	ctx context.Context, req *model.AfkHeartbeatRequest,
) (*model.AfkHeartbeatResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx)
	kv, owner, err := ownerStore(ctx, d.kv, cfg.Reward.Scope)
	if err != nil {
		return nil, err
	}

	release, err := d.guard.Acquire(owner)
	if err != nil {
		return nil, err
	}
	defer release()

	now := d.now()
	tracker := earning.NewCooldownTracker(kv, d.now)
	ledger := earning.NewDailyLedger(
		storage.Scoped(kv, afkNamespace), cfg.Afk.DailyCap, cfg.Reward.Location(), d.now)

	earnedToday, err := ledger.TotalClaimedToday(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load afk ledger: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.AfkHeartbeatResponse{
		EarnedToday:  earnedToday,
		DailyCap:     cfg.Afk.DailyCap,
		NextRewardMs: cfg.Afk.Interval.Milliseconds(),
	}

	sessionGap := tracker.CanTrigger(ctx, actionAfkHeartbeat, cfg.Afk.Interval+cfg.Afk.Grace)
	if err := tracker.RecordTrigger(ctx, actionAfkHeartbeat, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record afk heartbeat: %v", err)
		return nil, errorx.Unknown
	}

	if sessionGap.Allowed {
		if err := tracker.RecordTrigger(ctx, actionAfk, now); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot start afk session: %v", err)
			return nil, errorx.Unknown
		}

		return resp, nil
	}

	status := tracker.CanTrigger(ctx, actionAfk, cfg.Afk.Interval)
	if !status.Allowed {
		resp.NextRewardMs = status.Remaining.Milliseconds()
		return resp, nil
	}

	coins := mathUtil.MinInt(cfg.Afk.CoinsPerInterval, cfg.Afk.DailyCap-earnedToday)
	if coins <= 0 {
		return resp, nil
	}

	slot := strconv.FormatInt(now.UnixMilli()/cfg.Afk.Interval.Milliseconds(), 10)
	if err := ledger.CanClaim(ctx, slot, coins); err != nil {
		if _, ok := err.(errorx.Error); ok {
			return resp, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot check afk ledger: %v", err)
		return nil, errorx.Unknown
	}

	newBalance, err := d.balanceMutator.UpdateBalance(ctx, userID, int64(coins), client.ReasonAfk)
	if err != nil {
		return nil, err
	}

	if err := ledger.Claim(ctx, slot, coins); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit afk slot %s: %v", slot, err)
	}

	if err := tracker.RecordTrigger(ctx, actionAfk, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record afk accrual: %v", err)
	}

	resp.Earned = coins
	resp.NewBalance = newBalance
	resp.EarnedToday = earnedToday + coins
	return resp, nil
}
