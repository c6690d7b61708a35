package entity

type LeaderboardPoint struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	// Period is the month of the points, formatted as 2006-01.
	Period string `gorm:"primaryKey"`
	Points int64  `gorm:"index"`
}
