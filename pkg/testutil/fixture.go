package testutil

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/repository"
)

var (
	// Owner has the highest privilege, its admin flag cannot be changed.
	Owner = entity.User{Base: entity.Base{ID: "user0"}, Username: "owner", IsOwner: true, IsAdmin: true}
	Admin = entity.User{Base: entity.Base{ID: "user1"}, Username: "admin", IsAdmin: true}
	User2 = entity.User{Base: entity.Base{ID: "user2"}, Username: "alice"}
	User3 = entity.User{Base: entity.Base{ID: "user3"}, Username: "bob"}

	Users = []*entity.User{&Owner, &Admin, &User2, &User3}

	InitialBalance = map[string]int64{
		Owner.ID: 0,
		Admin.ID: 0,
		User2.ID: 100,
		User3.ID: 0,
	}
)

// CreateFixtureDb inserts the fixture users and their wallets, users are
// created one second apart in declaration order.
func CreateFixtureDb(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	walletRepo := repository.NewWalletRepository()

	createdAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range Users {
		user := *u
		user.CreatedAt = createdAt.Add(time.Duration(i) * time.Second)
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}

		err := walletRepo.Create(ctx, &entity.Wallet{
			UserID:  user.ID,
			Balance: InitialBalance[user.ID],
		})
		if err != nil {
			panic(err)
		}
	}
}

func MockContextWithFixture(userID string) context.Context {
	ctx := MockContextWithUserID(userID)
	CreateFixtureDb(ctx)
	return ctx
}
