package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type OrderRepository interface {
	Create(ctx context.Context, data *entity.Order) error
	GetByUserID(ctx context.Context, userID string) ([]entity.Order, error)
}

type orderRepository struct{}

func NewOrderRepository() *orderRepository {
	return &orderRepository{}
}

func (r *orderRepository) Create(ctx context.Context, data *entity.Order) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	var records []entity.Order
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
