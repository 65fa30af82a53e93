package models

// Device is one oven reachable through the gateway connection.
type Device struct {
	CookerID string `json:"cooker_id"`
	Type     string `json:"type"`
	State    *State `json:"state,omitempty"` // nil until the first state event
}

// Credentials is the gateway access/refresh token pair.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
