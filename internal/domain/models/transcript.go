package models

// Turn roles in a reconstructed transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TranscriptTurn is one role-tagged utterance in the reconstructed
// conversation. Derived from the session event log, never mutated.
type TranscriptTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
