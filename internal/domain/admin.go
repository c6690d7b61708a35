package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/spdm-lab/rewards/pkg/xredis"
	"gorm.io/gorm"
)

type AdminDomain interface {
	ListUsers(context.Context, *model.ListUsersRequest) (*model.ListUsersResponse, error)
	GetStats(context.Context, *model.GetStatsRequest) (*model.GetStatsResponse, error)
	ToggleAdmin(context.Context, *model.ToggleAdminRequest) (*model.ToggleAdminResponse, error)
	UpdateBalance(context.Context, *model.AdminUpdateBalanceRequest) (*model.AdminUpdateBalanceResponse, error)
	BanUser(context.Context, *model.BanUserRequest) (*model.BanUserResponse, error)
	UnbanUser(context.Context, *model.UnbanUserRequest) (*model.UnbanUserResponse, error)
	ListBans(context.Context, *model.ListBansRequest) (*model.ListBansResponse, error)
}

type adminDomain struct {
	userRepo       repository.UserRepository
	walletRepo     repository.WalletRepository
	banRepo        repository.BanRepository
	balanceMutator client.BalanceMutator
	redisClient    xredis.Client
	roleVerifier   *common.GlobalRoleVerifier
	now            func() time.Time
}

func NewAdminDomain(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	banRepo repository.BanRepository,
	balanceMutator client.BalanceMutator,
	redisClient xredis.Client,
	roleVerifier *common.GlobalRoleVerifier,
) *adminDomain {
	return &adminDomain{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		banRepo:        banRepo,
		balanceMutator: balanceMutator,
		redisClient:    redisClient,
		roleVerifier:   roleVerifier,
		now:            time.Now,
	}
}

func (d *adminDomain) ListUsers(
	ctx context.Context, req *model.ListUsersRequest,
) (*model.ListUsersResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	pageSize := xcontext.Configs(ctx).Admin.PageSize
	page := req.Page
	if page < 1 {
		page = 1
	}

	users, total, err := d.userRepo.GetList(ctx, repository.GetListUserFilter{
		Search: req.Search,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.User{}
	for i := range users {
		wallet, err := d.walletRepo.GetByUserID(ctx, users[i].ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get wallet: %v", err)
			return nil, errorx.Unknown
		}

		coins := int64(0)
		if wallet != nil {
			coins = wallet.Balance
		}

		result = append(result, model.ConvertUser(&users[i], coins))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return &model.ListUsersResponse{Users: result, Page: page, TotalPages: totalPages}, nil
}

func (d *adminDomain) GetStats(
	ctx context.Context, req *model.GetStatsRequest,
) (*model.GetStatsResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	totalUsers, err := d.userRepo.Count(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count users: %v", err)
		return nil, errorx.Unknown
	}

	totalCoins, err := d.walletRepo.TotalBalance(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum balances: %v", err)
		return nil, errorx.Unknown
	}

	activeUsers, err := d.redisClient.SCard(ctx, common.RedisKeyOnlineUsers)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count online users: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetStatsResponse{
		TotalUsers:  totalUsers,
		ActiveUsers: int64(activeUsers),
		TotalCoins:  totalCoins,
	}, nil
}

func (d *adminDomain) getUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

func (d *adminDomain) ToggleAdmin(
	ctx context.Context, req *model.ToggleAdminRequest,
) (*model.ToggleAdminResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if user.IsOwner {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot change the role of the owner")
	}

	if err := d.userRepo.UpdateAdmin(ctx, user.ID, !user.IsAdmin); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update admin role: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("User %s set admin of %s to %t",
		xcontext.RequestUserID(ctx), user.ID, !user.IsAdmin)
	return &model.ToggleAdminResponse{IsAdmin: !user.IsAdmin}, nil
}

func (d *adminDomain) UpdateBalance(
	ctx context.Context, req *model.AdminUpdateBalanceRequest,
) (*model.AdminUpdateBalanceResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must not be zero")
	}

	if _, err := d.getUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	newBalance, err := d.balanceMutator.UpdateBalance(ctx, req.UserID, req.Amount, client.ReasonAdminAdjustment)
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("User %s changed the balance of %s by %d",
		xcontext.RequestUserID(ctx), req.UserID, req.Amount)
	return &model.AdminUpdateBalanceResponse{NewBalance: newBalance}, nil
}

func (d *adminDomain) BanUser(ctx context.Context, req *model.BanUserRequest) (*model.BanUserResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if user.IsOwner {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot ban the owner")
	}

	if user.ID == xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.BadRequest, "Cannot ban yourself")
	}

	ban := &entity.BanRecord{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   user.ID,
		Reason:   req.Reason,
		BannedBy: xcontext.RequestUserID(ctx),
	}

	if req.Duration != "" {
		duration, err := time.ParseDuration(req.Duration)
		if err != nil || duration <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid ban duration %s", req.Duration)
		}

		ban.ExpiresAt = sql.NullTime{Valid: true, Time: d.now().Add(duration)}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.banRepo.LiftByUserID(ctx, user.ID, d.now()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot lift previous bans: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.banRepo.Create(ctx, ban); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ban: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userRepo.UpdateBanned(ctx, user.ID, true); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot ban user: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit ban: %v", err)
		return nil, errorx.Unknown
	}

	return &model.BanUserResponse{}, nil
}

func (d *adminDomain) UnbanUser(ctx context.Context, req *model.UnbanUserRequest) (*model.UnbanUserResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	user, err := d.getUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := LiftBan(ctx, d.banRepo, d.userRepo, user.ID, d.now()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unban user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UnbanUserResponse{}, nil
}

func (d *adminDomain) ListBans(ctx context.Context, req *model.ListBansRequest) (*model.ListBansResponse, error) {
	if err := verifyAdmin(ctx, d.roleVerifier); err != nil {
		return nil, err
	}

	bans, err := d.banRepo.GetActive(ctx, d.now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get bans: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.BanRecord{}
	for i := range bans {
		result = append(result, model.ConvertBanRecord(&bans[i]))
	}

	return &model.ListBansResponse{Bans: result}, nil
}

// LiftBan ends every ban of a user and clears the banned flag.
func LiftBan(
	ctx context.Context,
	banRepo repository.BanRepository,
	userRepo repository.UserRepository,
	userID string,
	now time.Time,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := banRepo.LiftByUserID(ctx, userID, now); err != nil {
		return err
	}

	if err := userRepo.UpdateBanned(ctx, userID, false); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
