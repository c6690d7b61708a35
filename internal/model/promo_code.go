package model

type PromoCode struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Coins     int64  `json:"coins"`
	MaxUses   int    `json:"max_uses"`
	UsedCount int    `json:"used_count"`
	ExpiresAt string `json:"expires_at,omitempty"`
	IsActive  bool   `json:"is_active"`
}

type RedeemPromoCodeRequest struct {
	Code string `json:"code"`
}

type RedeemPromoCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreatePromoCodeRequest struct {
	// Code is generated when empty.
	Code    string `json:"code"`
	Coins   int64  `json:"coins"`
	MaxUses int    `json:"max_uses"`

	// ExpiresIn is a duration such as 72h, empty means never.
	ExpiresIn string `json:"expires_in"`
}

type CreatePromoCodeResponse struct {
	PromoCode PromoCode `json:"promo_code"`
}

type ListPromoCodesRequest struct{}

type ListPromoCodesResponse struct {
	PromoCodes []PromoCode `json:"promo_codes"`
}

type DeactivatePromoCodeRequest struct {
	ID string `json:"id"`
}

type DeactivatePromoCodeResponse struct{}
