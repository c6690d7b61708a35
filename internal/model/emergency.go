package model

type EmergencyMessage struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type BroadcastEmergencyRequest struct {
	Message string `json:"message"`
}

type BroadcastEmergencyResponse struct {
	Emergency EmergencyMessage `json:"emergency"`
}

type ClearEmergencyRequest struct{}

type ClearEmergencyResponse struct{}

type GetEmergencyMessageRequest struct{}

type GetEmergencyMessageResponse struct {
	// Emergency is nil when no message is active.
	Emergency *EmergencyMessage `json:"emergency"`
}
