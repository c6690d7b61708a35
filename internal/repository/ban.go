package repository

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type BanRepository interface {
	Create(ctx context.Context, data *entity.BanRecord) error

	// GetActive returns the bans which were neither lifted nor expired at now.
	GetActive(ctx context.Context, now time.Time) ([]entity.BanRecord, error)
	GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*entity.BanRecord, error)

	// GetExpired returns the bans which expired before now but are not
	// lifted yet.
	GetExpired(ctx context.Context, now time.Time) ([]entity.BanRecord, error)
	LiftByUserID(ctx context.Context, userID string, now time.Time) error
}

type banRepository struct{}

func NewBanRepository() *banRepository {
	return &banRepository{}
}

func (r *banRepository) Create(ctx context.Context, data *entity.BanRecord) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *banRepository) GetActive(ctx context.Context, now time.Time) ([]entity.BanRecord, error) {
	var records []entity.BanRecord
	err := xcontext.DB(ctx).
		Where("lifted_at IS NULL").
		Where("expires_at IS NULL OR expires_at>?", now).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *banRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*entity.BanRecord, error) {
	var record entity.BanRecord
	err := xcontext.DB(ctx).
		Where("user_id=? AND lifted_at IS NULL", userID).
		Where("expires_at IS NULL OR expires_at>?", now).
		Order("created_at DESC").
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *banRepository) GetExpired(ctx context.Context, now time.Time) ([]entity.BanRecord, error) {
	var records []entity.BanRecord
	err := xcontext.DB(ctx).
		Where("lifted_at IS NULL AND expires_at IS NOT NULL AND expires_at<=?", now).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *banRepository) LiftByUserID(ctx context.Context, userID string, now time.Time) error {
	return xcontext.DB(ctx).Model(&entity.BanRecord{}).
		Where("user_id=? AND lifted_at IS NULL", userID).
		Update("lifted_at", now).Error
}
