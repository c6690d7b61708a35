package model

type ListUsersRequest struct {
	Search string `json:"search"`
	Page   int    `json:"page"`
}

type ListUsersResponse struct {
	Users      []User `json:"users"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	TotalUsers  int64 `json:"total_users"`
	ActiveUsers int64 `json:"active_users"`
	TotalCoins  int64 `json:"total_coins"`
}

type ToggleAdminRequest struct {
	UserID string `json:"user_id"`
}

type ToggleAdminResponse struct {
	IsAdmin bool `json:"is_admin"`
}

type AdminUpdateBalanceRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type AdminUpdateBalanceResponse struct {
	NewBalance int64 `json:"new_balance"`
}

type BanUserRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`

	// Duration such as 24h, empty means permanent.
	Duration string `json:"duration"`
}

type BanUserResponse struct{}

type UnbanUserRequest struct {
	UserID string `json:"user_id"`
}

type UnbanUserResponse struct{}

type BanRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
	BannedBy  string `json:"banned_by"`
	ExpiresAt string `json:"expires_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ListBansRequest struct{}

type ListBansResponse struct {
	Bans []BanRecord `json:"bans"`
}
