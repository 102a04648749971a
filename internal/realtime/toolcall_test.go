package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/tidwall/gjson"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const validArguments = `{
	"phase": "warmup",
	"elapsed_seconds": 42,
	"topics_covered": ["greetings"],
	"skills": {
		"pronunciation": {"score": 3, "notes": "clear", "examples": []},
		"fluency": {"score": 2, "notes": "hesitant", "examples": ["long pauses"]},
		"grammar": {"score": 3, "notes": "", "examples": []},
		"vocabulary": {"score": 4, "notes": "", "examples": []},
		"comprehension": {"score": 4, "notes": "", "examples": []}
	}
}`

func responseOutputEvent(t *testing.T, calls string) string {
	t.Helper()
	return fmt.Sprintf(`{"type":"response.done","response":{"output":[%s]}}`, calls)
}

func functionCall(name, callID, args string) string {
	encoded, _ := json.Marshal(args)
	return fmt.Sprintf(`{"type":"function_call","name":%q,"call_id":%q,"arguments":%s}`, name, callID, encoded)
}

func TestExtractToolCallsFromResponseOutput(t *testing.T) {
	raw := responseOutputEvent(t, functionCall("report_observation", "call_1", validArguments))
	ev := mustEvent(t, raw)

	calls := ExtractToolCalls(ev, "report_observation", testLogger)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}

	call := calls[0]
	if call.CallID != "call_1" {
		t.Errorf("CallID = %q, want call_1", call.CallID)
	}
	if call.Observation.Phase != "warmup" {
		t.Errorf("Phase = %q, want warmup", call.Observation.Phase)
	}
	if got := call.Observation.Skills["fluency"].Score; got != 2 {
		t.Errorf("fluency score = %d, want 2", got)
	}
}

func TestExtractToolCallsSkipsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
	}{
		{name: "unparseable JSON", arguments: `{"phase": warmup`},
		{name: "unknown phase", arguments: `{"phase":"interrogation","skills":{"a":{"score":3},"b":{"score":3},"c":{"score":3},"d":{"score":3}}}`},
		{name: "score out of range", arguments: `{"phase":"basic","skills":{"a":{"score":9},"b":{"score":3},"c":{"score":3},"d":{"score":3}}}`},
		{name: "too few skills", arguments: `{"phase":"basic","skills":{"a":{"score":3}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := responseOutputEvent(t,
				functionCall("report_observation", "bad", tt.arguments)+","+
					functionCall("report_observation", "good", validArguments))
			ev := mustEvent(t, raw)

			calls := ExtractToolCalls(ev, "report_observation", testLogger)
			if len(calls) != 1 {
				t.Fatalf("got %d calls, want exactly the well-formed one", len(calls))
			}
			if calls[0].CallID != "good" {
				t.Errorf("kept call %q, want good", calls[0].CallID)
			}
		})
	}
}

func TestExtractToolCallsIgnoresOtherTools(t *testing.T) {
	raw := responseOutputEvent(t, functionCall("fetch_weather", "call_1", validArguments))
	ev := mustEvent(t, raw)

	if calls := ExtractToolCalls(ev, "report_observation", testLogger); len(calls) != 0 {
		t.Errorf("got %d calls for a different tool, want 0", len(calls))
	}
}

func TestExtractToolCallsFromToolCallsList(t *testing.T) {
	encoded, _ := json.Marshal(validArguments)
	raw := fmt.Sprintf(`{"type":"response.done","tool_calls":[{"id":"tc_9","type":"function","function":{"name":"report_observation","arguments":%s}}]}`, encoded)
	ev := mustEvent(t, raw)

	calls := ExtractToolCalls(ev, "report_observation", testLogger)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].CallID != "tc_9" {
		t.Errorf("CallID = %q, want tc_9", calls[0].CallID)
	}
}

func TestTagOutbound(t *testing.T) {
	payload, id, err := TagOutbound([]byte(`{"type":"response.create"}`))
	if err != nil {
		t.Fatalf("TagOutbound: %v", err)
	}
	if id == "" {
		t.Error("expected a generated event id")
	}
	if got := gjson.GetBytes(payload, "event_id").String(); got != id {
		t.Errorf("payload event_id = %q, want %q", got, id)
	}

	// An existing id is preserved, not overwritten.
	payload, id, err = TagOutbound([]byte(`{"type":"response.create","event_id":"evt_7"}`))
	if err != nil {
		t.Fatalf("TagOutbound: %v", err)
	}
	if id != "evt_7" {
		t.Errorf("id = %q, want evt_7", id)
	}
	if got := gjson.GetBytes(payload, "event_id").String(); got != "evt_7" {
		t.Errorf("payload event_id = %q, want evt_7", got)
	}

	if _, _, err := TagOutbound([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestAcknowledgment(t *testing.T) {
	payload, err := Acknowledgment("call_42", map[string]any{"status": "recorded"})
	if err != nil {
		t.Fatalf("Acknowledgment: %v", err)
	}

	if got := gjson.GetBytes(payload, "type").String(); got != "conversation.item.create" {
		t.Errorf("type = %q, want conversation.item.create", got)
	}
	if got := gjson.GetBytes(payload, "item.type").String(); got != "function_call_output" {
		t.Errorf("item.type = %q, want function_call_output", got)
	}
	if got := gjson.GetBytes(payload, "item.call_id").String(); got != "call_42" {
		t.Errorf("item.call_id = %q, want call_42", got)
	}
	if gjson.GetBytes(payload, "event_id").String() == "" {
		t.Error("acknowledgment must carry an event id")
	}

	output := gjson.GetBytes(payload, "item.output").String()
	if gjson.Get(output, "status").String() != "recorded" {
		t.Errorf("item.output = %q, want embedded status recorded", output)
	}
}
