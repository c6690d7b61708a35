package model

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
	Level    int64  `json:"level"`
	IsAdmin  bool   `json:"is_admin"`
	IsOwner  bool   `json:"is_owner"`
	IsBanned bool   `json:"is_banned"`
}

type AccessToken struct {
	ID string `json:"id"`
}

type GetMeRequest struct {
	// Username is only used when the profile is provisioned.
	Username string `json:"username"`
}

type GetMeResponse User

type BalanceTransaction struct {
	ID           string `json:"id"`
	Delta        int64  `json:"delta"`
	BalanceAfter int64  `json:"balance_after"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
}

type GetMyTransactionsRequest struct {
	Limit int `json:"limit"`
}

type GetMyTransactionsResponse struct {
	Transactions []BalanceTransaction `json:"transactions"`
}
