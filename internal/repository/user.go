package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListUserFilter struct {
	Search string
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetList(ctx context.Context, filter GetListUserFilter) ([]entity.User, int64, error)
	UpdateAdmin(ctx context.Context, id string, isAdmin bool) error
	UpdateBanned(ctx context.Context, id string, isBanned bool) error
	IncreaseEarned(ctx context.Context, id string, amount int64) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("username=?", username).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetList returns a page of users, newest first, and the total number of
// users matching the filter.
func (r *userRepository) GetList(ctx context.Context, filter GetListUserFilter) ([]entity.User, int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.User{})
	if filter.Search != "" {
		tx = tx.Where("username LIKE ?", "%"+filter.Search+"%")
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []entity.User
	err := tx.Order("created_at DESC").Order("id ASC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *userRepository) UpdateAdmin(ctx context.Context, id string, isAdmin bool) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND is_owner=?", id, false).
		Update("is_admin", isAdmin)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) UpdateBanned(ctx context.Context, id string, isBanned bool) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("is_banned", isBanned).Error
}

func (r *userRepository) IncreaseEarned(ctx context.Context, id string, amount int64) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("earned", gorm.Expr("earned+?", amount)).Error
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
