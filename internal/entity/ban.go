package entity

import "database/sql"

type BanRecord struct {
	Base
	UserID   string `gorm:"index"`
	User     User   `gorm:"foreignKey:UserID"`
	Reason   string
	BannedBy string

	// ExpiresAt is null for a permanent ban.
	ExpiresAt sql.NullTime
	LiftedAt  sql.NullTime
}
