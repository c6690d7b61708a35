package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type Migrator func(ctx context.Context) error

// Migrators are applied in the order of their versions. A new schema change
// gets a new version, never edit an applied one.
var Migrators = map[string]Migrator{
	"0000": migrate0000,
	"0001": migrate0001,
	"0002": migrate0002,
}

// AutoMigrate creates every table with the latest schema. When this migrator
// is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Wallet{},
		&entity.BalanceTransaction{},
		&entity.LeaderboardPoint{},
		&entity.PromoCode{},
		&entity.PromoRedemption{},
		&entity.BanRecord{},
		&entity.EmergencyMessage{},
		&entity.Order{},
		&entity.Migration{},
	)
}

// Migrate applies all versions which were not recorded yet.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	versions := make([]string, 0, len(Migrators))
	for v := range Migrators {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	for _, version := range versions {
		if err := apply(ctx, version); err != nil {
			return fmt.Errorf("migrate %s: %w", version, err)
		}
	}

	return nil
}

// MigrateVersion applies a single version, even if it was applied before.
func MigrateVersion(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(ctx)
}

func apply(ctx context.Context, version string) error {
	var record entity.Migration
	err := xcontext.DB(ctx).Where("version=?", version).Take(&record).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	xcontext.Logger(ctx).Infof("Applying migration %s", version)
	if err := Migrators[version](ctx); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error
}
