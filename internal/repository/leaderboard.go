package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRecord struct {
	UserID   string
	Username string
	Points   int64
}

type LeaderboardRepository interface {
	Increase(ctx context.Context, userID, period string, points int64) error

	// GetTop returns the users having at least minPoints in period, ordered by
	// points descending then user id ascending.
	GetTop(ctx context.Context, period string, minPoints int64, limit int) ([]LeaderboardRecord, error)
}

type leaderboardRepository struct{}

func NewLeaderboardRepository() *leaderboardRepository {
	return &leaderboardRepository{}
}

func (r *leaderboardRepository) Increase(ctx context.Context, userID, period string, points int64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "period"}},
			DoUpdates: clause.Assignments(map[string]any{
				"points": gorm.Expr("points+?", points),
			}),
		}).
		Create(&entity.LeaderboardPoint{
			UserID: userID,
			Period: period,
			Points: points,
		}).Error
}

func (r *leaderboardRepository) GetTop(
	ctx context.Context, period string, minPoints int64, limit int,
) ([]LeaderboardRecord, error) {
	var records []LeaderboardRecord
	err := xcontext.DB(ctx).Model(&entity.LeaderboardPoint{}).
		Select("leaderboard_points.user_id, users.username, leaderboard_points.points").
		Joins("JOIN users ON users.id = leaderboard_points.user_id").
		Where("leaderboard_points.period=? AND leaderboard_points.points>=?", period, minPoints).
		Where("users.deleted_at IS NULL").
		Order("leaderboard_points.points DESC").
		Order("leaderboard_points.user_id ASC").
		Limit(limit).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
