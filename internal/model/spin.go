package model

type SpinOutcome struct {
	Value       int     `json:"value"`
	Probability float64 `json:"probability"`
	Color       string  `json:"color"`
}

type GetSpinStatusRequest struct{}

type GetSpinStatusResponse struct {
	Allowed     bool          `json:"allowed"`
	RemainingMs int64         `json:"remaining_ms"`
	Remaining   string        `json:"remaining"`
	Outcomes    []SpinOutcome `json:"outcomes"`
}

type SpinRequest struct{}

type SpinResponse struct {
	Value               int     `json:"value"`
	Index               int     `json:"index"`
	RotationTarget      float64 `json:"rotation_target"`
	PresentationDelayMs int64   `json:"presentation_delay_ms"`
	NewBalance          int64   `json:"new_balance"`
	NextSpinAt          int64   `json:"next_spin_at"`
}
