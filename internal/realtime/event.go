package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TagOutbound ensures an outbound protocol event carries an event_id,
// injecting a fresh uuid when the transport gave us none. Returns the
// (possibly rewritten) payload and the effective event id.
func TagOutbound(payload []byte) ([]byte, string, error) {
	if !gjson.ValidBytes(payload) {
		return nil, "", fmt.Errorf("outbound event is not valid JSON")
	}

	if id := gjson.GetBytes(payload, "event_id").String(); id != "" {
		return payload, id, nil
	}

	id := uuid.NewString()
	tagged, err := sjson.SetBytes(payload, "event_id", id)
	if err != nil {
		return nil, "", fmt.Errorf("tag outbound event: %w", err)
	}
	return tagged, id, nil
}

// Acknowledgment builds the mandatory reply to a tool call. The remote
// protocol requires a function_call_output item referencing the
// originating call id; an unacknowledged call can stall the model's
// turn-taking.
func Acknowledgment(callID string, output any) ([]byte, error) {
	result, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal tool output: %w", err)
	}

	ack := map[string]any{
		"type":     "conversation.item.create",
		"event_id": uuid.NewString(),
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(result),
		},
	}

	payload, err := json.Marshal(ack)
	if err != nil {
		return nil, fmt.Errorf("marshal acknowledgment: %w", err)
	}
	return payload, nil
}
