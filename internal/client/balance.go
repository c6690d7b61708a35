package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	ReasonSpin            = "Spin Wheel"
	ReasonAdminAdjustment = "Admin adjustment"
	ReasonAfk             = "AFK Farming"
	reasonRewardPrefix    = "Reward: "
	reasonShopPrefix      = "Shop: "
	reasonPromoCodePrefix = "Promo code: "
)

func ReasonReward(offerName string) string {
	return reasonRewardPrefix + offerName
}

func ReasonShop(itemName string) string {
	return reasonShopPrefix + itemName
}

func ReasonPromoCode(code string) string {
	return reasonPromoCodePrefix + code
}

// BalanceMutator is the only way to change a coin balance. It applies a
// signed delta and returns the authoritative new balance.
type BalanceMutator interface {
	UpdateBalance(ctx context.Context, userID string, delta int64, reason string) (int64, error)
}

type balanceCaller struct {
	walletRepo      repository.WalletRepository
	transactionRepo repository.BalanceTransactionRepository
	userRepo        repository.UserRepository
	leaderboardRepo repository.LeaderboardRepository
	publisher       pubsub.Publisher
	node            *snowflake.Node
	now             func() time.Time
}

func NewBalanceCaller(
	walletRepo repository.WalletRepository,
	transactionRepo repository.BalanceTransactionRepository,
	userRepo repository.UserRepository,
	leaderboardRepo repository.LeaderboardRepository,
	publisher pubsub.Publisher,
	node *snowflake.Node,
) *balanceCaller {
	return &balanceCaller{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		leaderboardRepo: leaderboardRepo,
		publisher:       publisher,
		node:            node,
		now:             time.Now,
	}
}

func (c *balanceCaller) UpdateBalance(ctx context.Context, userID string, delta int64, reason string) (int64, error) {
	if delta == 0 {
		return 0, errorx.New(errorx.BadRequest, "Amount must not be zero")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := c.walletRepo.Increase(ctx, userID, delta); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot increase the balance: %v", err)
			return 0, errorx.Unknown
		}

		if _, err := c.walletRepo.GetByUserID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, errorx.New(errorx.NotFound, "Not found wallet")
			}

			xcontext.Logger(ctx).Errorf("Cannot get wallet: %v", err)
			return 0, errorx.Unknown
		}

		return 0, errorx.New(errorx.InsufficientBalance, "Insufficient balance")
	}

	wallet, err := c.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get wallet: %v", err)
		return 0, errorx.Unknown
	}

	err = c.transactionRepo.Create(ctx, &entity.BalanceTransaction{
		SnowFlakeBase: entity.SnowFlakeBase{ID: c.node.Generate().Int64()},
		UserID:        userID,
		Delta:         delta,
		BalanceAfter:  wallet.Balance,
		Reason:        reason,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create balance transaction: %v", err)
		return 0, errorx.Unknown
	}

	if delta > 0 && reason != ReasonAdminAdjustment {
		if err := c.addEarning(ctx, userID, delta); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add earning: %v", err)
			return 0, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit balance transaction: %v", err)
		return 0, errorx.Unknown
	}

	// A caller's outer transaction may still roll the mutation back.
	xcontext.AfterCommit(ctx, func() {
		common.PromCounters[common.BalanceMutationTotal].WithLabelValues(reasonLabel(reason)).Inc()
		common.PublishEvent(ctx, c.publisher, common.TopicBalance, userID, model.EventBalanceUpdate,
			model.BalanceUpdateEvent{UserID: userID, Balance: wallet.Balance, Delta: delta, Reason: reason})
	})

	return wallet.Balance, nil
}

func (c *balanceCaller) addEarning(ctx context.Context, userID string, amount int64) error {
	if err := c.userRepo.IncreaseEarned(ctx, userID, amount); err != nil {
		return err
	}

	user, err := c.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	// Admin accounts do not compete in the leaderboard.
	if user.CanAdministrate() {
		return nil
	}

	period := dateutil.MonthPeriod(c.now().In(xcontext.Configs(ctx).Reward.Location()))
	return c.leaderboardRepo.Increase(ctx, userID, period, amount)
}

// reasonLabel drops the variable part of a reason to keep the metric
// cardinality low.
func reasonLabel(reason string) string {
	for _, prefix := range []string{reasonRewardPrefix, reasonShopPrefix, reasonPromoCodePrefix} {
		if len(reason) >= len(prefix) && reason[:len(prefix)] == prefix {
			return fmt.Sprintf("%s*", prefix)
		}
	}

	return reason
}
