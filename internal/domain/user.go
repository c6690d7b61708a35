package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	GetMyTransactions(context.Context, *model.GetMyTransactionsRequest) (*model.GetMyTransactionsResponse, error)
}

type userDomain struct {
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.BalanceTransactionRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.BalanceTransactionRepository,
) *userDomain {
	return &userDomain{
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		user, err = d.provision(ctx, userID, req.Username)
		if err != nil {
			return nil, err
		}
	}

	wallet, err := d.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get wallet: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetMeResponse(model.ConvertUser(user, wallet.Balance))
	return &resp, nil
}

// provision creates the profile and the wallet of an account registered by
// the auth provider but never seen before.
func (d *userDomain) provision(ctx context.Context, userID, username string) (*entity.User, error) {
	if username == "" {
		prefix := userID
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		username = "user-" + prefix
	}

	if _, err := d.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Username %s is already taken", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user by username: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user := &entity.User{Base: entity.Base{ID: userID}, Username: username}
	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.walletRepo.Create(ctx, &entity.Wallet{UserID: userID}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create wallet: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit user provision: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Provisioned user %s (%s)", userID, username)
	return user, nil
}

func (d *userDomain) GetMyTransactions(
	ctx context.Context, req *model.GetMyTransactionsRequest,
) (*model.GetMyTransactionsResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	txs, err := d.transactionRepo.GetByUserID(ctx, userID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance transactions: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.BalanceTransaction{}
	for _, tx := range txs {
		result = append(result, model.BalanceTransaction{
			ID:           strconv.FormatInt(tx.ID, 10),
			Delta:        tx.Delta,
			BalanceAfter: tx.BalanceAfter,
			Reason:       tx.Reason,
			CreatedAt:    formatTime(tx.CreatedAt),
		})
	}

	return &model.GetMyTransactionsResponse{Transactions: result}, nil
}
