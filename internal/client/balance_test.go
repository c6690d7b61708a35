package client_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newBalanceCaller(t *testing.T, publisher *testutil.MockPublisher) client.BalanceMutator {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return client.NewBalanceCaller(
		repository.NewWalletRepository(),
		repository.NewBalanceTransactionRepository(),
		repository.NewUserRepository(),
		repository.NewLeaderboardRepository(),
		publisher,
		node,
	)
}

func getBalance(t *testing.T, ctx context.Context, userID string) int64 {
	wallet, err := repository.NewWalletRepository().GetByUserID(ctx, userID)
	require.NoError(t, err)
	return wallet.Balance
}

func TestBalanceCaller_UpdateBalance(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	publisher := &testutil.MockPublisher{}
	caller := newBalanceCaller(t, publisher)

	balance, err := caller.UpdateBalance(ctx, testutil.User2.ID, 10, client.ReasonSpin)
	require.NoError(t, err)
	require.Equal(t, int64(110), balance)
	require.Equal(t, int64(110), getBalance(t, ctx, testutil.User2.ID))

	balance, err = caller.UpdateBalance(ctx, testutil.User2.ID, -30, client.ReasonShop("1 Day Key"))
	require.NoError(t, err)
	require.Equal(t, int64(80), balance)

	txs, err := repository.NewBalanceTransactionRepository().GetByUserID(ctx, testutil.User2.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, int64(-30), txs[0].Delta)
	require.Equal(t, int64(80), txs[0].BalanceAfter)
	require.Equal(t, "Shop: 1 Day Key", txs[0].Reason)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), user.Earned)

	require.Equal(t, []string{common.TopicBalance, common.TopicBalance}, publisher.Topics())
}

func TestBalanceCaller_InsufficientBalance(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User3.ID)
	publisher := &testutil.MockPublisher{}
	caller := newBalanceCaller(t, publisher)

	_, err := caller.UpdateBalance(ctx, testutil.User3.ID, -1, client.ReasonShop("1 Day Key"))
	require.True(t, errorx.Is(err, errorx.InsufficientBalance))
	require.Equal(t, int64(0), getBalance(t, ctx, testutil.User3.ID))
	require.Empty(t, publisher.Topics())

	txs, err := repository.NewBalanceTransactionRepository().GetByUserID(ctx, testutil.User3.ID, 10)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestBalanceCaller_Invalid(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	caller := newBalanceCaller(t, &testutil.MockPublisher{})

	_, err := caller.UpdateBalance(ctx, testutil.User2.ID, 0, client.ReasonSpin)
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = caller.UpdateBalance(ctx, "unknown", 5, client.ReasonSpin)
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func TestBalanceCaller_Leaderboard(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	caller := newBalanceCaller(t, &testutil.MockPublisher{})

	_, err := caller.UpdateBalance(ctx, testutil.User2.ID, 50, client.ReasonSpin)
	require.NoError(t, err)
	_, err = caller.UpdateBalance(ctx, testutil.User2.ID, 10, client.ReasonSpin)
	require.NoError(t, err)

	// Admin adjustments and admin accounts are not counted.
	_, err = caller.UpdateBalance(ctx, testutil.User3.ID, 500, client.ReasonAdminAdjustment)
	require.NoError(t, err)
	_, err = caller.UpdateBalance(ctx, testutil.Admin.ID, 100, client.ReasonSpin)
	require.NoError(t, err)

	var points []entity.LeaderboardPoint
	require.NoError(t, xcontext.DB(ctx).Find(&points).Error)
	require.Len(t, points, 1)
	require.Equal(t, testutil.User2.ID, points[0].UserID)
	require.Equal(t, int64(60), points[0].Points)
}

func TestBalanceCaller_OuterTransaction(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	publisher := &testutil.MockPublisher{}
	caller := newBalanceCaller(t, publisher)

	// The event waits for the outer commit.
	txCtx := xcontext.WithDBTransaction(ctx)
	_, err := caller.UpdateBalance(txCtx, testutil.User2.ID, 5, client.ReasonSpin)
	require.NoError(t, err)
	require.Empty(t, publisher.Topics())
	require.NoError(t, xcontext.WithCommitDBTransaction(txCtx))
	require.Equal(t, []string{common.TopicBalance}, publisher.Topics())
	require.Equal(t, int64(105), getBalance(t, ctx, testutil.User2.ID))

	// A rolled back outer transaction never publishes.
	txCtx = xcontext.WithDBTransaction(ctx)
	_, err = caller.UpdateBalance(txCtx, testutil.User2.ID, 5, client.ReasonSpin)
	require.NoError(t, err)
	xcontext.WithRollbackDBTransaction(txCtx)
	require.Len(t, publisher.Topics(), 1)
	require.Equal(t, int64(105), getBalance(t, ctx, testutil.User2.ID))
}
