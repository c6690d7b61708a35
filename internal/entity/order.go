package entity

type Order struct {
	Base
	UserID   string `gorm:"index"`
	User     User   `gorm:"foreignKey:UserID"`
	ItemID   string
	ItemName string
	Price    int64
	KeyCode  string `gorm:"unique"`
}
