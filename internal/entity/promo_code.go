package entity

import "database/sql"

type PromoCode struct {
	Base
	Code      string `gorm:"unique"`
	Coins     int64
	MaxUses   int
	UsedCount int
	ExpiresAt sql.NullTime
	IsActive  bool
	CreatedBy string
}

type PromoRedemption struct {
	Base
	PromoCodeID string    `gorm:"uniqueIndex:idx_promo_redemption"`
	PromoCode   PromoCode `gorm:"foreignKey:PromoCodeID"`
	UserID      string    `gorm:"uniqueIndex:idx_promo_redemption"`
	User        User      `gorm:"foreignKey:UserID"`
}
