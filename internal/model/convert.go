package model

import (
	"database/sql"
	"time"

	"github.com/spdm-lab/rewards/internal/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return formatTime(t.Time)
}

func ConvertUser(u *entity.User, coins int64) User {
	if u == nil {
		return User{}
	}

	return User{
		ID:       u.ID,
		Username: u.Username,
		Coins:    coins,
		Level:    u.Level(),
		IsAdmin:  u.IsAdmin,
		IsOwner:  u.IsOwner,
		IsBanned: u.IsBanned,
	}
}

func ConvertPromoCode(p *entity.PromoCode) PromoCode {
	if p == nil {
		return PromoCode{}
	}

	return PromoCode{
		ID:        p.ID,
		Code:      p.Code,
		Coins:     p.Coins,
		MaxUses:   p.MaxUses,
		UsedCount: p.UsedCount,
		ExpiresAt: formatNullTime(p.ExpiresAt),
		IsActive:  p.IsActive,
	}
}

func ConvertOrder(o *entity.Order) Order {
	if o == nil {
		return Order{}
	}

	return Order{
		ID:        o.ID,
		ItemID:    o.ItemID,
		ItemName:  o.ItemName,
		Price:     o.Price,
		KeyCode:   o.KeyCode,
		CreatedAt: formatTime(o.CreatedAt),
	}
}

func ConvertBanRecord(b *entity.BanRecord) BanRecord {
	if b == nil {
		return BanRecord{}
	}

	return BanRecord{
		ID:        b.ID,
		UserID:    b.UserID,
		Reason:    b.Reason,
		BannedBy:  b.BannedBy,
		ExpiresAt: formatNullTime(b.ExpiresAt),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func ConvertEmergencyMessage(e *entity.EmergencyMessage) EmergencyMessage {
	if e == nil {
		return EmergencyMessage{}
	}

	return EmergencyMessage{
		ID:        e.ID,
		Message:   e.Message,
		CreatedAt: formatTime(e.CreatedAt),
	}
}
