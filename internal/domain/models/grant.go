package models

import "time"

// SessionGrant is the credential package handed to the browser: the
// ephemeral client secret plus everything it needs to open its own
// realtime connection.
type SessionGrant struct {
	SessionID    string    `json:"session_id"`
	ClientSecret string    `json:"client_secret"`
	ExpiresAt    time.Time `json:"expires_at"`
	Model        string    `json:"model"`
	Instructions string    `json:"instructions"`
}
