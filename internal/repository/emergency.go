package repository

import (
	"context"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type EmergencyRepository interface {
	Create(ctx context.Context, data *entity.EmergencyMessage) error
	GetActive(ctx context.Context) (*entity.EmergencyMessage, error)
	DeactivateAll(ctx context.Context) error
}

type emergencyRepository struct{}

func NewEmergencyRepository() *emergencyRepository {
	return &emergencyRepository{}
}

func (r *emergencyRepository) Create(ctx context.Context, data *entity.EmergencyMessage) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *emergencyRepository) GetActive(ctx context.Context) (*entity.EmergencyMessage, error) {
	var record entity.EmergencyMessage
	err := xcontext.DB(ctx).
		Where("is_active=?", true).
		Order("created_at DESC").
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *emergencyRepository) DeactivateAll(ctx context.Context) error {
	return xcontext.DB(ctx).Model(&entity.EmergencyMessage{}).
		Where("is_active=?", true).
		Update("is_active", false).Error
}
