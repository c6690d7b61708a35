package repository

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type PromoCodeRepository interface {
	Create(ctx context.Context, data *entity.PromoCode) error
	GetByCode(ctx context.Context, code string) (*entity.PromoCode, error)
	GetList(ctx context.Context) ([]entity.PromoCode, error)
	Deactivate(ctx context.Context, id string) error

	// Use consumes one use of an active, unexpired code which still has uses
	// left. It returns gorm.ErrRecordNotFound otherwise.
	Use(ctx context.Context, id string, now time.Time) error
	CreateRedemption(ctx context.Context, data *entity.PromoRedemption) error
}

type promoCodeRepository struct{}

func NewPromoCodeRepository() *promoCodeRepository {
	return &promoCodeRepository{}
}

func (r *promoCodeRepository) Create(ctx context.Context, data *entity.PromoCode) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	var record entity.PromoCode
	if err := xcontext.DB(ctx).Where("code=?", code).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *promoCodeRepository) GetList(ctx context.Context) ([]entity.PromoCode, error) {
	var records []entity.PromoCode
	if err := xcontext.DB(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *promoCodeRepository) Deactivate(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Model(&entity.PromoCode{}).
		Where("id=?", id).
		Update("is_active", false)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *promoCodeRepository) Use(ctx context.Context, id string, now time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.PromoCode{}).
		Where("id=? AND is_active=?", id, true).
		Where("max_uses=0 OR used_count<max_uses").
		Where("expires_at IS NULL OR expires_at>?", now).
		Update("used_count", gorm.Expr("used_count+?", 1))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *promoCodeRepository) CreateRedemption(ctx context.Context, data *entity.PromoRedemption) error {
	return xcontext.DB(ctx).Create(data).Error
}
