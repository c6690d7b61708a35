package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

// PromoCodeRedeemer credits the coins of a promo code through the balance
// mutator. A code can be redeemed once per account.
type PromoCodeRedeemer interface {
	RedeemPromoCode(ctx context.Context, userID, code string) (*model.RedeemPromoCodeResponse, error)
}

type promoCodeCaller struct {
	promoCodeRepo  repository.PromoCodeRepository
	balanceMutator BalanceMutator
	now            func() time.Time
}

func NewPromoCodeCaller(
	promoCodeRepo repository.PromoCodeRepository,
	balanceMutator BalanceMutator,
) *promoCodeCaller {
	return &promoCodeCaller{
		promoCodeRepo:  promoCodeRepo,
		balanceMutator: balanceMutator,
		now:            time.Now,
	}
}

func rejected(format string, a ...any) *model.RedeemPromoCodeResponse {
	return &model.RedeemPromoCodeResponse{Success: false, Message: fmt.Sprintf(format, a...)}
}

func (c *promoCodeCaller) RedeemPromoCode(ctx context.Context, userID, code string) (*model.RedeemPromoCodeResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	promo, err := c.promoCodeRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("Invalid promo code"), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get promo code: %v", err)
		return nil, errorx.Unknown
	}

	now := c.now()
	switch {
	case !promo.IsActive:
		return rejected("This promo code is no longer active"), nil
	case promo.ExpiresAt.Valid && !promo.ExpiresAt.Time.After(now):
		return rejected("This promo code has expired"), nil
	case promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses:
		return rejected("This promo code has reached its usage limit"), nil
	}

	err = c.promoCodeRepo.CreateRedemption(ctx, &entity.PromoRedemption{
		Base:        entity.Base{ID: uuid.NewString()},
		PromoCodeID: promo.ID,
		UserID:      userID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return rejected("You have already redeemed this promo code"), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot create promo redemption: %v", err)
		return nil, errorx.Unknown
	}

	if err := c.promoCodeRepo.Use(ctx, promo.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("This promo code has reached its usage limit"), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot use promo code: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := c.balanceMutator.UpdateBalance(ctx, userID, promo.Coins, ReasonPromoCode(promo.Code)); err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit promo redemption: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RedeemPromoCodeResponse{
		Success: true,
		Message: fmt.Sprintf("You received %d coins!", promo.Coins),
	}, nil
}
