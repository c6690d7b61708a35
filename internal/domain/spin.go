package domain

import (
	"context"
	"strconv"
	"time"

	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type SpinDomain interface {
	GetSpinStatus(context.Context, *model.GetSpinStatusRequest) (*model.GetSpinStatusResponse, error)
	Spin(context.Context, *model.SpinRequest) (*model.SpinResponse, error)
}

type spinDomain struct {
	kv             storage.KV
	balanceMutator client.BalanceMutator
	guard          *common.InFlightGuard
	now            func() time.Time
	random         func() float64
}

func NewSpinDomain(kv storage.KV, balanceMutator client.BalanceMutator) *spinDomain {
	return &spinDomain{
		kv:             kv,
		balanceMutator: balanceMutator,
		guard:          common.NewInFlightGuard(),
		now:            time.Now,
	}
}

func (d *spinDomain) tracker(ctx context.Context) (*earning.CooldownTracker, string, error) {
	kv, owner, err := ownerStore(ctx, d.kv, xcontext.Configs(ctx).Reward.Scope)
	if err != nil {
		return nil, "", err
	}

	return earning.NewCooldownTracker(kv, d.now), owner, nil
}

func (d *spinDomain) selector(ctx context.Context) (*earning.SpinSelector, error) {
	outcomes := []earning.SpinOutcome{}
	for _, o := range xcontext.Configs(ctx).Spin.Outcomes {
		outcomes = append(outcomes, earning.SpinOutcome{
			Value:       o.Value,
			Probability: o.Probability,
			Color:       o.Color,
		})
	}

	selector, err := earning.NewSpinSelector(outcomes, d.random)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid spin outcomes: %v", err)
		return nil, errorx.Unknown
	}

	return selector, nil
}

func (d *spinDomain) GetSpinStatus(
	ctx context.Context, req *model.GetSpinStatusRequest,
) (*model.GetSpinStatusResponse, error) {
	tracker, _, err := d.tracker(ctx)
	if err != nil {
		return nil, err
	}

	status := tracker.CanTrigger(ctx, earning.ActionSpin, xcontext.Configs(ctx).Spin.Cooldown)

	outcomes := []model.SpinOutcome{}
	for _, o := range xcontext.Configs(ctx).Spin.Outcomes {
		outcomes = append(outcomes, model.SpinOutcome{
			Value:       o.Value,
			Probability: o.Probability,
			Color:       o.Color,
		})
	}

	resp := &model.GetSpinStatusResponse{
		Allowed:  status.Allowed,
		Outcomes: outcomes,
	}

	if !status.Allowed {
		resp.RemainingMs = status.Remaining.Milliseconds()
		resp.Remaining = dateutil.FormatClock(status.Remaining)
	}

	return resp, nil
}

func (d *spinDomain) Spin(ctx context.Context, req *model.SpinRequest) (*model.SpinResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	tracker, owner, err := d.tracker(ctx)
	if err != nil {
		return nil, err
	}

	release, err := d.guard.Acquire(owner)
	if err != nil {
		return nil, err
	}
	defer release()

	cfg := xcontext.Configs(ctx).Spin
	if err := tracker.CanTrigger(ctx, earning.ActionSpin, cfg.Cooldown).Err(); err != nil {
		xcontext.Logger(ctx).Debugf("Spin of %s is rejected: %v", owner, err)
		return nil, err
	}

	selector, err := d.selector(ctx)
	if err != nil {
		return nil, err
	}

	index, outcome := selector.Spin()
	newBalance, err := d.balanceMutator.UpdateBalance(ctx, userID, int64(outcome.Value), client.ReasonSpin)
	if err != nil {
		return nil, err
	}

	now := d.now()
	if err := tracker.RecordTrigger(ctx, earning.ActionSpin, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record spin time of %s: %v", owner, err)
	}

	common.PromCounters[common.SpinTotal].WithLabelValues(strconv.Itoa(outcome.Value)).Inc()

	return &model.SpinResponse{
		Value:               outcome.Value,
		Index:               index,
		RotationTarget:      selector.RotationTarget(index),
		PresentationDelayMs: cfg.PresentationDelay.Milliseconds(),
		NewBalance:          newBalance,
		NextSpinAt:          now.Add(cfg.Cooldown).UnixMilli(),
	}, nil
}
