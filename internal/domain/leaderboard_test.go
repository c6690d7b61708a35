package domain

import (
	"context"
	"testing"
	"time"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_leaderboardDomain_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	leaderboardRepo := repository.NewLeaderboardRepository()
	redisClient := testutil.NewMockRedisClient()

	now := time.Date(2024, 3, 20, 12, 30, 0, 0, time.UTC)
	d := NewLeaderboardDomain(leaderboardRepo, redisClient)
	d.now = func() time.Time { return now }

	require.NoError(t, leaderboardRepo.Increase(ctx, testutil.User2.ID, "2024-03", 50))
	require.NoError(t, leaderboardRepo.Increase(ctx, testutil.User3.ID, "2024-03", 50))
	require.NoError(t, leaderboardRepo.Increase(ctx, testutil.Owner.ID, "2024-03", 9))
	require.NoError(t, leaderboardRepo.Increase(ctx, testutil.Admin.ID, "2024-02", 500))

	resp, err := d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{})
	require.NoError(t, err)
	require.Equal(t, "2024-03", resp.Period)
	require.Equal(t, "11 days 11 hours 30 minutes", resp.TimeUntilReset)
	require.Equal(t, 3, resp.TopRewarded)
	require.Equal(t, []model.LeaderboardEntry{
		{Rank: 1, UserID: testutil.User2.ID, Username: testutil.User2.Username, Points: 50},
		{Rank: 2, UserID: testutil.User3.ID, Username: testutil.User3.Username, Points: 50},
	}, resp.Entries)

	myRank, err := d.GetMyRank(testutil.WithUserID(ctx, testutil.User3.ID), &model.GetMyRankRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, myRank.Entry.Rank)

	myRank, err = d.GetMyRank(testutil.WithUserID(ctx, testutil.Owner.ID), &model.GetMyRankRequest{})
	require.NoError(t, err)
	require.Nil(t, myRank.Entry)

	// The cached ranking is served until it expires.
	require.NoError(t, leaderboardRepo.Increase(ctx, testutil.User3.ID, "2024-03", 1))
	resp, err = d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User2.ID, resp.Entries[0].UserID)

	require.NoError(t, redisClient.Del(context.Background(), common.RedisKeyLeaderboard("2024-03")))
	resp, err = d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User3.ID, resp.Entries[0].UserID)
	require.Equal(t, int64(51), resp.Entries[0].Points)
}

func TestTimeUntilReset(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "0 days 0 hours 1 minutes", TimeUntilReset(now))
}
