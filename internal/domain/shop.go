package domain

import (
	"context"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"golang.org/x/exp/slices"
)

const (
	keyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	keyCodeLength   = 16
)

type ShopDomain interface {
	ListItems(context.Context, *model.ListShopItemsRequest) (*model.ListShopItemsResponse, error)
	Purchase(context.Context, *model.PurchaseRequest) (*model.PurchaseResponse, error)
	GetMyOrders(context.Context, *model.GetMyOrdersRequest) (*model.GetMyOrdersResponse, error)
}

type shopDomain struct {
	orderRepo      repository.OrderRepository
	balanceMutator client.BalanceMutator
	guard          *common.InFlightGuard
}

func NewShopDomain(orderRepo repository.OrderRepository, balanceMutator client.BalanceMutator) *shopDomain {
	return &shopDomain{
		orderRepo:      orderRepo,
		balanceMutator: balanceMutator,
		guard:          common.NewInFlightGuard(),
	}
}

func (d *shopDomain) ListItems(
	ctx context.Context, req *model.ListShopItemsRequest,
) (*model.ListShopItemsResponse, error) {
	items := []model.ShopItem{}
	for _, item := range xcontext.Configs(ctx).Shop.Items {
		items = append(items, model.ShopItem{ID: item.ID, Name: item.Name, Price: item.Price})
	}

	return &model.ListShopItemsResponse{Items: items}, nil
}

// formatKeyCode groups a generated key code by four characters.
func formatKeyCode(raw string) string {
	code := []byte{}
	for i := 0; i < len(raw); i++ {
		if i > 0 && i%4 == 0 {
			code = append(code, '-')
		}
		code = append(code, raw[i])
	}

	return string(code)
}

func (d *shopDomain) Purchase(ctx context.Context, req *model.PurchaseRequest) (*model.PurchaseResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	items := xcontext.Configs(ctx).Shop.Items
	i := slices.IndexFunc(items, func(item config.ShopItem) bool { return item.ID == req.ItemID })
	if i < 0 {
		return nil, errorx.New(errorx.NotFound, "Not found item")
	}
	item := items[i]

	release, err := d.guard.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	rawCode, err := gonanoid.Generate(keyCodeAlphabet, keyCodeLength)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate key code: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	newBalance, err := d.balanceMutator.UpdateBalance(ctx, userID, -int64(item.Price), client.ReasonShop(item.Name))
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   userID,
		ItemID:   item.ID,
		ItemName: item.Name,
		Price:    int64(item.Price),
		KeyCode:  formatKeyCode(rawCode),
	}
	if err := d.orderRepo.Create(ctx, order); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create order: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit order: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("User %s bought %s", userID, item.Name)
	return &model.PurchaseResponse{Order: model.ConvertOrder(order), NewBalance: newBalance}, nil
}

func (d *shopDomain) GetMyOrders(
	ctx context.Context, req *model.GetMyOrdersRequest,
) (*model.GetMyOrdersResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := d.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get orders: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Order{}
	for i := range orders {
		result = append(result, model.ConvertOrder(&orders[i]))
	}

	return &model.GetMyOrdersResponse{Orders: result}, nil
}
