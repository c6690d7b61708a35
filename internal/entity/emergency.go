package entity

type EmergencyMessage struct {
	Base
	Message   string
	CreatedBy string
	IsActive  bool `gorm:"index"`
}
