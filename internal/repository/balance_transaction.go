package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type BalanceTransactionRepository interface {
	Create(ctx context.Context, data *entity.BalanceTransaction) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]entity.BalanceTransaction, error)
}

type balanceTransactionRepository struct{}

func NewBalanceTransactionRepository() *balanceTransactionRepository {
	return &balanceTransactionRepository{}
}

func (r *balanceTransactionRepository) Create(ctx context.Context, data *entity.BalanceTransaction) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *balanceTransactionRepository) GetByUserID(
	ctx context.Context, userID string, limit int,
) ([]entity.BalanceTransaction, error) {
	var records []entity.BalanceTransaction
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
