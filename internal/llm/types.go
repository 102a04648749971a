// Package llm is the thin client for the remote model service. Two
// operations matter to this backend: minting an ephemeral realtime
// session grant, and one-shot structured completion against a strict
// output schema.
package llm

import (
	"encoding/json"
	"time"
)

// ToolDefinition is a function tool in the realtime session format.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// RealtimeSessionRequest configures one ephemeral realtime session.
type RealtimeSessionRequest struct {
	Model          string
	Instructions   string
	Tools          []ToolDefinition
	ExpiresSeconds int
}

// RealtimeGrant is the ephemeral credential scoping a single realtime
// session, handed to the browser for its WebRTC negotiation.
type RealtimeGrant struct {
	ClientSecret string    `json:"client_secret"`
	ExpiresAt    time.Time `json:"expires_at"`
	Model        string    `json:"model"`
}

// StructuredRequest asks for a single completion constrained to a JSON
// schema. The response is the raw schema-conforming JSON document.
type StructuredRequest struct {
	Model      string
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// chatCompletionResponse is the subset of the upstream completion
// envelope the client reads.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string          `json:"content"`
			Refusal json.RawMessage `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}
