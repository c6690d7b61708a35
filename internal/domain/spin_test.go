package domain

import (
	"context"
	"testing"
	"time"

	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestSpinDomain(now time.Time, r float64) (*spinDomain, *testutil.MockClock, *testutil.MockBalanceMutator) {
	clock := testutil.NewMockClock(now)
	mutator := &testutil.MockBalanceMutator{}
	d := NewSpinDomain(storage.NewMemoryKV(), mutator)
	d.now = clock.Now
	d.random = func() float64 { return r }
	return d, clock, mutator
}

func Test_spinDomain_Spin(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	d, clock, mutator := newTestSpinDomain(start, 0.7)

	status, err := d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{})
	require.NoError(t, err)
	require.True(t, status.Allowed)
	require.Len(t, status.Outcomes, 4)

	resp, err := d.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.Equal(t, 10, resp.Value)
	require.Equal(t, 1, resp.Index)
	require.Equal(t, 1800+360-135.0, resp.RotationTarget)
	require.Equal(t, int64(5000), resp.PresentationDelayMs)
	require.Equal(t, int64(10), resp.NewBalance)
	require.Equal(t, start.Add(6*time.Hour).UnixMilli(), resp.NextSpinAt)
	require.Equal(t, []testutil.BalanceCall{
		{UserID: testutil.User2.ID, Delta: 10, Reason: client.ReasonSpin},
	}, mutator.Calls)

	clock.Advance(2*time.Hour + 30*time.Minute)
	status, err = d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{})
	require.NoError(t, err)
	require.False(t, status.Allowed)
	require.Equal(t, (3*time.Hour + 30*time.Minute).Milliseconds(), status.RemainingMs)
	require.Equal(t, "03:30:00", status.Remaining)

	_, err = d.Spin(ctx, &model.SpinRequest{})
	require.True(t, errorx.Is(err, errorx.CooldownActive))
	require.Equal(t, "Please wait 03:30:00 before trying again", err.Error())
	require.Len(t, mutator.Calls, 1)

	clock.Advance(3*time.Hour + 30*time.Minute)
	_, err = d.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.Len(t, mutator.Calls, 2)
}

func Test_spinDomain_FailedMutationKeepsCooldown(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, _, _ := newTestSpinDomain(time.Now(), 0.1)
	d.balanceMutator = &testutil.MockBalanceMutator{
		UpdateBalanceFunc: func(context.Context, string, int64, string) (int64, error) {
			return 0, errorx.Unknown
		},
	}

	_, err := d.Spin(ctx, &model.SpinRequest{})
	require.Error(t, err)

	status, err := d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{})
	require.NoError(t, err)
	require.True(t, status.Allowed)
}

func Test_spinDomain_DeviceScope(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Reward.Scope = config.ScopeDevice

	ctx := xcontext.WithConfigs(testutil.MockContextWithUserID(testutil.User2.ID), cfg)
	d, _, _ := newTestSpinDomain(time.Now(), 0.1)

	_, err := d.Spin(ctx, &model.SpinRequest{})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = d.Spin(xcontext.WithDeviceID(ctx, "device-a"), &model.SpinRequest{})
	require.NoError(t, err)

	// Another account on the same device shares the cooldown.
	other := xcontext.WithDeviceID(testutil.WithUserID(ctx, testutil.User3.ID), "device-a")
	_, err = d.Spin(other, &model.SpinRequest{})
	require.True(t, errorx.Is(err, errorx.CooldownActive))

	_, err = d.Spin(xcontext.WithDeviceID(ctx, "device-b"), &model.SpinRequest{})
	require.NoError(t, err)
}

func Test_spinDomain_InvalidOutcomes(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Spin.Outcomes = []config.SpinOutcome{{Value: 1, Probability: 0.5}}

	ctx := xcontext.WithConfigs(testutil.MockContextWithUserID(testutil.User2.ID), cfg)
	d, _, mutator := newTestSpinDomain(time.Now(), 0.1)

	_, err := d.Spin(ctx, &model.SpinRequest{})
	require.Equal(t, errorx.Unknown, err)
	require.Empty(t, mutator.Calls)
}
