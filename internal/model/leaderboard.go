package model

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

type GetLeaderboardRequest struct{}

type GetLeaderboardResponse struct {
	Period         string             `json:"period"`
	Entries        []LeaderboardEntry `json:"entries"`
	TimeUntilReset string             `json:"time_until_reset"`
	TopRewarded    int                `json:"top_rewarded"`
}

type GetMyRankRequest struct{}

type GetMyRankResponse struct {
	// Entry is nil when the user is not in the leaderboard.
	Entry *LeaderboardEntry `json:"entry"`
}
