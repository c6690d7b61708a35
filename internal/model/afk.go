package model

type AfkHeartbeatRequest struct{}

type AfkHeartbeatResponse struct {
	Earned       int   `json:"earned"`
	NewBalance   int64 `json:"new_balance,omitempty"`
	EarnedToday  int   `json:"earned_today"`
	DailyCap     int   `json:"daily_cap"`
	NextRewardMs int64 `json:"next_reward_ms"`
}
