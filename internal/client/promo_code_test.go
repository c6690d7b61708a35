package client_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestPromoCodeCaller_RedeemPromoCode(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User3.ID)
	promoRepo := repository.NewPromoCodeRepository()

	codes := []entity.PromoCode{
		{Base: entity.Base{ID: "p1"}, Code: "WELCOME", Coins: 25, IsActive: true},
		{Base: entity.Base{ID: "p2"}, Code: "OLD", Coins: 25, IsActive: false},
		{Base: entity.Base{ID: "p3"}, Code: "EXPIRED", Coins: 25, IsActive: true,
			ExpiresAt: sql.NullTime{Valid: true, Time: time.Now().Add(-time.Hour)}},
		{Base: entity.Base{ID: "p4"}, Code: "ONCE", Coins: 5, IsActive: true, MaxUses: 1},
	}
	for i := range codes {
		require.NoError(t, promoRepo.Create(ctx, &codes[i]))
	}

	caller := client.NewPromoCodeCaller(promoRepo, newBalanceCaller(t, &testutil.MockPublisher{}))

	resp, err := caller.RedeemPromoCode(ctx, testutil.User3.ID, "WELCOME")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "You received 25 coins!", resp.Message)
	require.Equal(t, int64(25), getBalance(t, ctx, testutil.User3.ID))

	resp, err = caller.RedeemPromoCode(ctx, testutil.User3.ID, "WELCOME")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "You have already redeemed this promo code", resp.Message)
	require.Equal(t, int64(25), getBalance(t, ctx, testutil.User3.ID))

	resp, err = caller.RedeemPromoCode(ctx, testutil.User3.ID, "NOPE")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "Invalid promo code", resp.Message)

	resp, err = caller.RedeemPromoCode(ctx, testutil.User3.ID, "OLD")
	require.NoError(t, err)
	require.False(t, resp.Success)

	resp, err = caller.RedeemPromoCode(ctx, testutil.User3.ID, "EXPIRED")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "This promo code has expired", resp.Message)

	resp, err = caller.RedeemPromoCode(ctx, testutil.User3.ID, "ONCE")
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = caller.RedeemPromoCode(ctx, testutil.User2.ID, "ONCE")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "This promo code has reached its usage limit", resp.Message)

	promo, err := promoRepo.GetByCode(ctx, "ONCE")
	require.NoError(t, err)
	require.Equal(t, 1, promo.UsedCount)
	require.Equal(t, int64(30), getBalance(t, ctx, testutil.User3.ID))
}
