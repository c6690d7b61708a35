package domain

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/spdm-lab/rewards/pkg/xredis"
)

type LeaderboardDomain interface {
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetMyRank(context.Context, *model.GetMyRankRequest) (*model.GetMyRankResponse, error)
}

type leaderboardDomain struct {
	leaderboardRepo repository.LeaderboardRepository
	redisClient     xredis.Client
	now             func() time.Time
}

func NewLeaderboardDomain(
	leaderboardRepo repository.LeaderboardRepository,
	redisClient xredis.Client,
) *leaderboardDomain {
	return &leaderboardDomain{
		leaderboardRepo: leaderboardRepo,
		redisClient:     redisClient,
		now:             time.Now,
	}
}

// TimeUntilReset returns how long the monthly leaderboard containing now
// lasts, formatted as "D days H hours M minutes".
func TimeUntilReset(now time.Time) string {
	return dateutil.FormatDaysHoursMinutes(dateutil.StartOfNextMonth(now).Sub(now))
}

// entries returns the ranked leaderboard of the current month. It is read
// from the cache if possible.
func (d *leaderboardDomain) entries(ctx context.Context, period string) ([]model.LeaderboardEntry, error) {
	cfg := xcontext.Configs(ctx).Leaderboard
	key := common.RedisKeyLeaderboard(period)

	var entries []model.LeaderboardEntry
	if d.redisClient != nil {
		err := d.redisClient.GetObj(ctx, key, &entries)
		if err == nil {
			return entries, nil
		}

		if !xredis.IsNil(err) {
			xcontext.Logger(ctx).Warnf("Cannot get leaderboard cache: %v", err)
		}
	}

	records, err := d.leaderboardRepo.GetTop(ctx, period, int64(cfg.MinPoints), cfg.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	entries = []model.LeaderboardEntry{}
	for i, r := range records {
		entries = append(entries, model.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   r.UserID,
			Username: r.Username,
			Points:   r.Points,
		})
	}

	if d.redisClient != nil {
		if err := d.redisClient.SetObj(ctx, key, entries, cfg.CacheTTL); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set leaderboard cache: %v", err)
		}
	}

	return entries, nil
}

func (d *leaderboardDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	now := d.now().In(xcontext.Configs(ctx).Reward.Location())
	period := dateutil.MonthPeriod(now)

	entries, err := d.entries(ctx, period)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{
		Period:         period,
		Entries:        entries,
		TimeUntilReset: TimeUntilReset(now),
		TopRewarded:    xcontext.Configs(ctx).Leaderboard.TopRewarded,
	}, nil
}

func (d *leaderboardDomain) GetMyRank(
	ctx context.Context, req *model.GetMyRankRequest,
) (*model.GetMyRankResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	now := d.now().In(xcontext.Configs(ctx).Reward.Location())
	entries, err := d.entries(ctx, dateutil.MonthPeriod(now))
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].UserID == userID {
			return &model.GetMyRankResponse{Entry: &entries[i]}, nil
		}
	}

	return &model.GetMyRankResponse{}, nil
}
