package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type EmergencyDomain interface {
	Broadcast(context.Context, *model.BroadcastEmergencyRequest) (*model.BroadcastEmergencyResponse, error)
	Clear(context.Context, *model.ClearEmergencyRequest) (*model.ClearEmergencyResponse, error)
	Get(context.Context, *model.GetEmergencyMessageRequest) (*model.GetEmergencyMessageResponse, error)
}

type emergencyDomain struct {
	emergencyRepo repository.EmergencyRepository
	publisher     pubsub.Publisher
	roleVerifier  *common.GlobalRoleVerifier
}

func NewEmergencyDomain(
	emergencyRepo repository.EmergencyRepository,
	publisher pubsub.Publisher,
	roleVerifier *common.GlobalRoleVerifier,
) *emergencyDomain {
	return &emergencyDomain{
		emergencyRepo: emergencyRepo,
		publisher:     publisher,
		roleVerifier:  roleVerifier,
	}
}

func (d *emergencyDomain) Broadcast(
	ctx context.Context, req *model.BroadcastEmergencyRequest,
) (*model.BroadcastEmergencyResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errorx.New(errorx.BadRequest, "Message must not be empty")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// Only one emergency message is active at a time.
	if err := d.emergencyRepo.DeactivateAll(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate emergency messages: %v", err)
		return nil, errorx.Unknown
	}

	emergency := &entity.EmergencyMessage{
		Base:      entity.Base{ID: uuid.NewString()},
		Message:   message,
		CreatedBy: xcontext.RequestUserID(ctx),
		IsActive:  true,
	}
	if err := d.emergencyRepo.Create(ctx, emergency); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create emergency message: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit emergency message: %v", err)
		return nil, errorx.Unknown
	}

	common.PublishEvent(ctx, d.publisher, common.TopicEmergency, emergency.ID, model.EventEmergency,
		model.EmergencyEvent{Message: message, Active: true})

	return &model.BroadcastEmergencyResponse{Emergency: model.ConvertEmergencyMessage(emergency)}, nil
}

func (d *emergencyDomain) Clear(
	ctx context.Context, req *model.ClearEmergencyRequest,
) (*model.ClearEmergencyResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	if err := d.emergencyRepo.DeactivateAll(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate emergency messages: %v", err)
		return nil, errorx.Unknown
	}

	common.PublishEvent(ctx, d.publisher, common.TopicEmergency, "", model.EventEmergency,
		model.EmergencyEvent{Active: false})

	return &model.ClearEmergencyResponse{}, nil
}

func (d *emergencyDomain) Get(
	ctx context.Context, req *model.GetEmergencyMessageRequest,
) (*model.GetEmergencyMessageResponse, error) {
	emergency, err := d.emergencyRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetEmergencyMessageResponse{}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get emergency message: %v", err)
		return nil, errorx.Unknown
	}

	result := model.ConvertEmergencyMessage(emergency)
	return &model.GetEmergencyMessageResponse{Emergency: &result}, nil
}
