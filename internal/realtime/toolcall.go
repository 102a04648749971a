package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
)

// ParsedCall is one validated invocation of the evaluation tool, together
// with the identifier the acknowledgment must reference.
type ParsedCall struct {
	CallID      string
	Name        string
	Observation models.EvaluationToolObservation
}

// ExtractToolCalls scans one protocol event for invocations of the named
// tool. Candidates live either under response.output (realtime protocol)
// or under a top-level tool_calls list (chat-completions shape).
//
// A candidate whose arguments fail to parse or validate is logged and
// dropped; a malformed call never aborts the rest of the batch.
func ExtractToolCalls(ev models.ProtocolEvent, toolName string, logger *slog.Logger) []ParsedCall {
	var calls []ParsedCall

	for _, candidate := range gjson.GetBytes(ev.Raw, "response.output").Array() {
		if candidate.Get("type").String() != "function_call" {
			continue
		}
		if candidate.Get("name").String() != toolName {
			continue
		}
		callID := candidate.Get("call_id").String()
		if callID == "" {
			callID = candidate.Get("id").String()
		}
		appendCall(&calls, callID, toolName, candidate.Get("arguments").String(), logger)
	}

	for _, candidate := range gjson.GetBytes(ev.Raw, "tool_calls").Array() {
		name := candidate.Get("name").String()
		args := candidate.Get("arguments").String()
		if nested := candidate.Get("function"); nested.Exists() {
			if name == "" {
				name = nested.Get("name").String()
			}
			if args == "" {
				args = nested.Get("arguments").String()
			}
		}
		if name != toolName {
			continue
		}
		callID := candidate.Get("id").String()
		if callID == "" {
			callID = candidate.Get("call_id").String()
		}
		appendCall(&calls, callID, toolName, args, logger)
	}

	return calls
}

// appendCall parses and validates one candidate's argument payload,
// appending it on success and logging a recoverable error otherwise.
func appendCall(calls *[]ParsedCall, callID, name, arguments string, logger *slog.Logger) {
	obs, err := parseObservation(arguments)
	if err != nil {
		callErr := &domain.MalformedToolCallError{CallID: callID, Cause: err}
		if logger != nil {
			logger.Warn("dropping malformed tool call",
				"call_id", callID,
				"tool", name,
				"error", callErr.Error(),
			)
		}
		return
	}

	*calls = append(*calls, ParsedCall{
		CallID:      callID,
		Name:        name,
		Observation: obs,
	})
}

func parseObservation(arguments string) (models.EvaluationToolObservation, error) {
	var obs models.EvaluationToolObservation
	if err := json.Unmarshal([]byte(arguments), &obs); err != nil {
		return models.EvaluationToolObservation{}, fmt.Errorf("parse arguments: %w", err)
	}
	if err := obs.Validate(); err != nil {
		return models.EvaluationToolObservation{}, fmt.Errorf("validate arguments: %w", err)
	}
	obs.ReceivedAt = time.Now()
	return obs, nil
}
