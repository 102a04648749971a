package realtime

import (
	"strings"

	"github.com/tidwall/gjson"

	"glossa/internal/domain/models"
)

// BuildTranscript reduces an accumulated event log to a clean transcript.
//
// The session stores events most-recent-first (new events are prepended),
// so the input is reversed to chronological order before extraction -
// transcript order must match actual conversation order. Pure function of
// the event list; an empty log yields an empty transcript.
func BuildTranscript(events []models.ProtocolEvent) []models.TranscriptTurn {
	transcript := make([]models.TranscriptTurn, 0, len(events))

	for i := len(events) - 1; i >= 0; i-- {
		if turn, ok := classifyEvent(events[i]); ok {
			transcript = append(transcript, turn)
		}
	}

	return transcript
}

// classifyEvent maps one protocol event to at most one transcript turn.
// Exactly one branch matches per event; everything unrecognized is ignored.
func classifyEvent(ev models.ProtocolEvent) (models.TranscriptTurn, bool) {
	switch ev.Type {
	case models.EventTypeUserTranscriptDone:
		text := strings.TrimSpace(gjson.GetBytes(ev.Raw, "transcript").String())
		if text == "" {
			return models.TranscriptTurn{}, false
		}
		return models.TranscriptTurn{Role: models.RoleUser, Text: text}, true

	case models.EventTypeAssistantTranscriptDone, models.EventTypeAssistantTranscriptDoneLegacy:
		text := strings.TrimSpace(gjson.GetBytes(ev.Raw, "transcript").String())
		if text == "" {
			return models.TranscriptTurn{}, false
		}
		return models.TranscriptTurn{Role: models.RoleAssistant, Text: text}, true

	case models.EventTypeItemCreated, models.EventTypeItemCreate:
		return classifyConversationItem(ev)
	}

	return models.TranscriptTurn{}, false
}

// classifyConversationItem handles manually created conversation items of
// type "message": the turn text is the joined non-empty content parts, the
// role comes from item.role with assistant as the default.
func classifyConversationItem(ev models.ProtocolEvent) (models.TranscriptTurn, bool) {
	item := gjson.GetBytes(ev.Raw, "item")
	if item.Get("type").String() != "message" {
		return models.TranscriptTurn{}, false
	}

	var parts []string
	for _, content := range item.Get("content").Array() {
		text := content.Get("text").String()
		if text == "" {
			text = content.Get("transcript").String()
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return models.TranscriptTurn{}, false
	}

	role := models.RoleAssistant
	if item.Get("role").String() == models.RoleUser {
		role = models.RoleUser
	}

	return models.TranscriptTurn{Role: role, Text: text}, true
}
