package model

const (
	EventBalanceUpdate  = "balance-update"
	EventPresenceUpdate = "presence-update"
	EventEmergency      = "emergency"
	EventSpinCountdown  = "spin-countdown"
	EventSpinReady      = "spin-ready"
)

// Event is what the realtime server pushes to websocket clients.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type BalanceUpdateEvent struct {
	UserID  string `structs:"user_id" mapstructure:"user_id"`
	Balance int64  `structs:"balance" mapstructure:"balance"`
	Delta   int64  `structs:"delta" mapstructure:"delta"`
	Reason  string `structs:"reason" mapstructure:"reason"`
}

type PresenceUpdateEvent struct {
	UserID string `structs:"user_id" mapstructure:"user_id"`
	Online bool   `structs:"online" mapstructure:"online"`
}

type EmergencyEvent struct {
	Message string `structs:"message" mapstructure:"message"`
	Active  bool   `structs:"active" mapstructure:"active"`
}

type SpinCountdownEvent struct {
	RemainingMs int64  `structs:"remaining_ms" mapstructure:"remaining_ms"`
	Remaining   string `structs:"remaining" mapstructure:"remaining"`
}

type SpinReadyEvent struct {
	Ready bool `structs:"ready" mapstructure:"ready"`
}
