package entity

import "time"

type Wallet struct {
	UserID    string `gorm:"primaryKey"`
	User      User   `gorm:"foreignKey:UserID"`
	Balance   int64
	UpdatedAt time.Time
}

type BalanceTransaction struct {
	SnowFlakeBase

	UserID       string `gorm:"index"`
	User         User   `gorm:"foreignKey:UserID"`
	Delta        int64
	BalanceAfter int64
	Reason       string
}
