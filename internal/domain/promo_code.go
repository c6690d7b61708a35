package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	promoCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	promoCodeLength   = 8
)

type PromoCodeDomain interface {
	Redeem(context.Context, *model.RedeemPromoCodeRequest) (*model.RedeemPromoCodeResponse, error)
	Create(context.Context, *model.CreatePromoCodeRequest) (*model.CreatePromoCodeResponse, error)
	GetList(context.Context, *model.ListPromoCodesRequest) (*model.ListPromoCodesResponse, error)
	Deactivate(context.Context, *model.DeactivatePromoCodeRequest) (*model.DeactivatePromoCodeResponse, error)
}

type promoCodeDomain struct {
	promoCodeRepo repository.PromoCodeRepository
	redeemer      client.PromoCodeRedeemer
	roleVerifier  *common.GlobalRoleVerifier
	guard         *common.InFlightGuard
	now           func() time.Time
}

func NewPromoCodeDomain(
	promoCodeRepo repository.PromoCodeRepository,
	redeemer client.PromoCodeRedeemer,
	roleVerifier *common.GlobalRoleVerifier,
) *promoCodeDomain {
	return &promoCodeDomain{
		promoCodeRepo: promoCodeRepo,
		redeemer:      redeemer,
		roleVerifier:  roleVerifier,
		guard:         common.NewInFlightGuard(),
		now:           time.Now,
	}
}

func (d *promoCodeDomain) Redeem(
	ctx context.Context, req *model.RedeemPromoCodeRequest,
) (*model.RedeemPromoCodeResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	minLength := xcontext.Configs(ctx).Admin.PromoCodeMinLength
	if len(code) < minLength {
		return nil, errorx.New(errorx.BadRequest, "Promo code must be at least %d characters", minLength)
	}

	release, err := d.guard.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	return d.redeemer.RedeemPromoCode(ctx, userID, code)
}

func (d *promoCodeDomain) Create(
	ctx context.Context, req *model.CreatePromoCodeRequest,
) (*model.CreatePromoCodeResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	if req.Coins <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Coins must be a positive number")
	}

	if req.MaxUses < 0 {
		return nil, errorx.New(errorx.BadRequest, "Max uses must not be negative")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		generated, err := gonanoid.Generate(promoCodeAlphabet, promoCodeLength)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot generate promo code: %v", err)
			return nil, errorx.Unknown
		}
		code = generated
	}

	minLength := xcontext.Configs(ctx).Admin.PromoCodeMinLength
	if len(code) < minLength {
		return nil, errorx.New(errorx.BadRequest, "Promo code must be at least %d characters", minLength)
	}

	promo := &entity.PromoCode{
		Base:      entity.Base{ID: uuid.NewString()},
		Code:      code,
		Coins:     req.Coins,
		MaxUses:   req.MaxUses,
		IsActive:  true,
		CreatedBy: xcontext.RequestUserID(ctx),
	}

	if req.ExpiresIn != "" {
		expiresIn, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || expiresIn <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid expiration %s", req.ExpiresIn)
		}

		promo.ExpiresAt = sql.NullTime{Valid: true, Time: d.now().Add(expiresIn)}
	}

	if _, err := d.promoCodeRepo.GetByCode(ctx, code); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Promo code %s already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get promo code: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.promoCodeRepo.Create(ctx, promo); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create promo code: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreatePromoCodeResponse{PromoCode: model.ConvertPromoCode(promo)}, nil
}

func (d *promoCodeDomain) GetList(
	ctx context.Context, req *model.ListPromoCodesRequest,
) (*model.ListPromoCodesResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	promoCodes, err := d.promoCodeRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get promo codes: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.PromoCode{}
	for i := range promoCodes {
		result = append(result, model.ConvertPromoCode(&promoCodes[i]))
	}

	return &model.ListPromoCodesResponse{PromoCodes: result}, nil
}

func (d *promoCodeDomain) Deactivate(
	ctx context.Context, req *model.DeactivatePromoCodeRequest,
) (*model.DeactivatePromoCodeResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	if err := d.promoCodeRepo.Deactivate(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found promo code")
		}

		xcontext.Logger(ctx).Errorf("Cannot deactivate promo code: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeactivatePromoCodeResponse{}, nil
}
