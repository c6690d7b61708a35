package model

type RewardOffer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Coins   int    `json:"coins"`
	Claimed bool   `json:"claimed"`
}

type ListOffersRequest struct{}

type ListOffersResponse struct {
	Offers       []RewardOffer `json:"offers"`
	TotalClaimed int           `json:"total_claimed"`
	DailyCap     int           `json:"daily_cap"`

	// ActiveOfferID is the offer currently awaiting the return of the user.
	ActiveOfferID string `json:"active_offer_id,omitempty"`
}

type OpenOfferRequest struct {
	OfferID string `json:"offer_id"`
}

type OpenOfferResponse struct {
	URL string `json:"url"`
}

type ChangeVisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

type ChangeVisibilityResponse struct {
	// Claimed is set when returning to the foreground confirmed a claim.
	Claimed      *ClaimResult `json:"claimed,omitempty"`
	TotalClaimed int          `json:"total_claimed"`
}

type ClaimResult struct {
	OfferID    string `json:"offer_id"`
	Coins      int    `json:"coins"`
	NewBalance int64  `json:"new_balance"`
	Warning    string `json:"warning,omitempty"`
}
