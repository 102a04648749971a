package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Protocol event types the backend understands. The realtime protocol is
// open-ended; every consumer switches on the discriminator and treats
// unknown types as ignored.
const (
	EventTypeUserTranscriptDone      = "conversation.item.input_audio_transcription.completed"
	EventTypeAssistantTranscriptDone = "response.output_audio_transcript.done"
	// Older transport revisions used a different name for the assistant
	// transcript terminal event. Both are accepted.
	EventTypeAssistantTranscriptDoneLegacy = "response.audio_transcript.done"
	EventTypeItemCreated                   = "conversation.item.created"
	EventTypeItemCreate                    = "conversation.item.create"
	EventTypeResponseDone                  = "response.done"
)

// ProtocolEvent is one raw message from the realtime data channel.
// Only the envelope is decoded eagerly; consumers pull type-specific
// fields out of Raw. Immutable once received.
type ProtocolEvent struct {
	Type       string          `json:"type"`
	EventID    string          `json:"event_id,omitempty"`
	Raw        json.RawMessage `json:"-"`
	ReceivedAt time.Time       `json:"-"`
}

// ParseProtocolEvent decodes the envelope of a raw data-channel message.
// The full payload is retained in Raw for consumer-specific extraction.
func ParseProtocolEvent(data []byte) (ProtocolEvent, error) {
	var ev ProtocolEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ProtocolEvent{}, fmt.Errorf("invalid protocol event: %w", err)
	}
	if ev.Type == "" {
		return ProtocolEvent{}, fmt.Errorf("protocol event missing type discriminator")
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	ev.Raw = raw
	ev.ReceivedAt = time.Now()
	return ev, nil
}
