package domain

import (
	"context"
	"errors"
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

func newTestRewardDomain(now time.Time) (*rewardDomain, *testutil.MockClock, *testutil.MockBalanceMutator) {
	clock := testutil.NewMockClock(now)
	mutator := &testutil.MockBalanceMutator{}
	d := NewRewardDomain(storage.NewMemoryKV(), mutator)
	d.now = clock.Now
	return d, clock, mutator
}

// flakyKV fails the next failures writes of several keys.
type flakyKV struct {
	storage.KV
	failures int
}

func (kv *flakyKV) MSet(ctx context.Context, pairs map[string]string) error {
	if kv.failures > 0 {
		kv.failures--
		return errors.New("connection reset")
	}

	return kv.KV.MSet(ctx, pairs)
}

// visit opens the offer and stays away from the page for away.
func visit(
	t *testing.T, ctx context.Context, d *rewardDomain, clock *testutil.MockClock, offerID string, away time.Duration,
) (*model.ChangeVisibilityResponse, error) {
	_, err := d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: offerID})
	require.NoError(t, err)

	_, err = d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: true})
	require.NoError(t, err)

	clock.Advance(away)
	return d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: false})
}

func Test_rewardDomain_Claim(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	resp, err := d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: "1"})
	require.NoError(t, err)
	require.Equal(t, "https://direct-link.net/1351367/reward-1", resp.URL)

	list, err := d.ListOffers(ctx, &model.ListOffersRequest{})
	require.NoError(t, err)
	require.Equal(t, "1", list.ActiveOfferID)

	visibility, err := visit(t, ctx, d, clock, "1", 31*time.Second)
	require.NoError(t, err)
	require.NotNil(t, visibility.Claimed)
	require.Equal(t, "1", visibility.Claimed.OfferID)
	require.Equal(t, 5, visibility.Claimed.Coins)
	require.Equal(t, int64(5), visibility.Claimed.NewBalance)
	require.Equal(t, 5, visibility.TotalClaimed)

	require.Equal(t, []testutil.BalanceCall{
		{UserID: testutil.User2.ID, Delta: 5, Reason: client.ReasonReward("Reward 1")},
	}, mutator.Calls)

	list, err = d.ListOffers(ctx, &model.ListOffersRequest{})
	require.NoError(t, err)
	require.Empty(t, list.ActiveOfferID)
	require.True(t, list.Offers[0].Claimed)
	require.False(t, list.Offers[1].Claimed)
	require.Equal(t, 5, list.TotalClaimed)
	require.Equal(t, 15, list.DailyCap)

	_, err = d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: "1"})
	require.True(t, errorx.Is(err, errorx.AlreadyClaimed))
}

func Test_rewardDomain_DwellTooShort(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	_, err := visit(t, ctx, d, clock, "2", 12*time.Second+500*time.Millisecond)
	require.True(t, errorx.Is(err, errorx.DwellTooShort))
	require.Equal(t,
		"You need to stay on the reward page for at least 30 seconds (18 more seconds needed)",
		err.(errorx.Error).Message)
	require.Empty(t, mutator.Calls)

	// The session is over, returning again does nothing.
	resp, err := d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: false})
	require.NoError(t, err)
	require.Nil(t, resp.Claimed)
	require.Equal(t, 0, resp.TotalClaimed)
}

func Test_rewardDomain_DailyCap(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	for _, id := range []string{"1", "2", "3"} {
		_, err := visit(t, ctx, d, clock, id, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, int64(15), mutator.TotalDelta())

	list, err := d.ListOffers(ctx, &model.ListOffersRequest{})
	require.NoError(t, err)
	require.Equal(t, 15, list.TotalClaimed)

	// The next day everything can be claimed again.
	clock.Set(time.Date(2024, 3, 6, 0, 0, 1, 0, time.UTC))
	list, err = d.ListOffers(ctx, &model.ListOffersRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, list.TotalClaimed)
	for _, o := range list.Offers {
		require.False(t, o.Claimed)
	}

	_, err = visit(t, ctx, d, clock, "1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(20), mutator.TotalDelta())
}

func Test_rewardDomain_OpenOverridesSession(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	_, err := d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: "1"})
	require.NoError(t, err)

	resp, err := visit(t, ctx, d, clock, "3", 45*time.Second)
	require.NoError(t, err)
	require.Equal(t, "3", resp.Claimed.OfferID)
	require.Len(t, mutator.Calls, 1)
}

func Test_rewardDomain_MutationFailure(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, _ := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	d.balanceMutator = &testutil.MockBalanceMutator{
		UpdateBalanceFunc: func(context.Context, string, int64, string) (int64, error) {
			return 0, errorx.Unknown
		},
	}

	_, err := visit(t, ctx, d, clock, "1", time.Minute)
	require.Error(t, err)

	// Nothing is committed to the ledger when the credit failed.
	list, err := d.ListOffers(ctx, &model.ListOffersRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, list.TotalClaimed)
	require.False(t, list.Offers[0].Claimed)
}

func Test_rewardDomain_FirstOpen(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	_, ok := d.sessions.Load(testutil.User2.ID)
	require.False(t, ok)

	resp, err := visit(t, ctx, d, clock, "2", 40*time.Second)
	require.NoError(t, err)
	require.NotNil(t, resp.Claimed)
	require.Equal(t, "2", resp.Claimed.OfferID)
	require.Len(t, mutator.Calls, 1)

	_, ok = d.sessions.Load(testutil.User2.ID)
	require.False(t, ok)
}

func Test_rewardDomain_DeviceScopeGuard(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Reward.Scope = config.ScopeDevice

	ctx := xcontext.WithConfigs(testutil.MockContextWithUserID(testutil.User2.ID), cfg)
	ctx = xcontext.WithDeviceID(ctx, "device-a")
	d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	// A claim of the same device is still running.
	release, err := d.guard.Acquire("device-a")
	require.NoError(t, err)

	_, err = visit(t, ctx, d, clock, "1", time.Minute)
	require.True(t, errorx.Is(err, errorx.InProgress))
	require.Empty(t, mutator.Calls)
	release()

	// Another account on the same device waits for the same guard.
	other := xcontext.WithDeviceID(testutil.WithUserID(ctx, testutil.User3.ID), "device-a")
	release, err = d.guard.Acquire(testutil.User3.ID)
	require.NoError(t, err)
	defer release()

	resp, err := visit(t, other, d, clock, "1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, resp.Claimed)
	require.Equal(t, []testutil.BalanceCall{
		{UserID: testutil.User3.ID, Delta: 5, Reason: client.ReasonReward("Reward 1")},
	}, mutator.Calls)
}

func Test_rewardDomain_LedgerFailure(t *testing.T) {
	testCases := []struct {
		name        string
		failures    int
		wantWarning bool
	}{
		{name: "recovered by retry", failures: ledgerClaimAttempts - 1},
		{name: "unrecorded", failures: ledgerClaimAttempts, wantWarning: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContextWithUserID(testutil.User2.ID)
			d, clock, mutator := newTestRewardDomain(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
			kv := &flakyKV{KV: d.kv}
			d.kv = kv

			_, err := d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: "1"})
			require.NoError(t, err)
			_, err = d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: true})
			require.NoError(t, err)

			clock.Advance(time.Minute)
			kv.failures = tt.failures
			resp, err := d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: false})
			require.NoError(t, err)
			require.NotNil(t, resp.Claimed)
			require.Equal(t, int64(5), resp.Claimed.NewBalance)
			require.Len(t, mutator.Calls, 1)

			list, err := d.ListOffers(ctx, &model.ListOffersRequest{})
			require.NoError(t, err)
			if tt.wantWarning {
				require.NotEmpty(t, resp.Claimed.Warning)
				require.False(t, list.Offers[0].Claimed)
			} else {
				require.Empty(t, resp.Claimed.Warning)
				require.True(t, list.Offers[0].Claimed)
				require.Equal(t, 5, list.TotalClaimed)
			}
		})
	}
}

func Test_rewardDomain_Invalid(t *testing.T) {
	d, _, _ := newTestRewardDomain(time.Now())

	_, err := d.OpenOffer(testutil.MockContext(), &model.OpenOfferRequest{OfferID: "1"})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	_, err = d.OpenOffer(ctx, &model.OpenOfferRequest{OfferID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	// Without any opened offer, visibility changes are ignored.
	resp, err := d.ChangeVisibility(ctx, &model.ChangeVisibilityRequest{Hidden: false})
	require.NoError(t, err)
	require.Nil(t, resp.Claimed)
}
