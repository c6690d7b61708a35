package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type WalletRepository interface {
	Create(ctx context.Context, data *entity.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error)

	// Increase adds delta to the balance only if the result is not negative.
	// It returns gorm.ErrRecordNotFound when the wallet does not exist or the
	// balance is not enough.
	Increase(ctx context.Context, userID string, delta int64) error
	TotalBalance(ctx context.Context) (int64, error)
}

type walletRepository struct{}

func NewWalletRepository() *walletRepository {
	return &walletRepository{}
}

func (r *walletRepository) Create(ctx context.Context, data *entity.Wallet) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	var record entity.Wallet
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *walletRepository) Increase(ctx context.Context, userID string, delta int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Wallet{}).
		Where("user_id=? AND balance+?>=0", userID, delta).
		Update("balance", gorm.Expr("balance+?", delta))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *walletRepository) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := xcontext.DB(ctx).Model(&entity.Wallet{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}
