package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "sk-test", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMintRealtimeSession(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"value":      "ek_abc123",
			"expires_at": 1700000600,
		})
	})

	grant, err := client.MintRealtimeSession(context.Background(), &RealtimeSessionRequest{
		Model:          "gpt-realtime",
		Instructions:   "conduct the interview",
		Tools:          []ToolDefinition{{Type: "function", Name: "report_observation"}},
		ExpiresSeconds: 600,
	})
	if err != nil {
		t.Fatalf("MintRealtimeSession: %v", err)
	}

	if gotPath != "/realtime/client_secrets" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if got := gjson.GetBytes(gotBody, "session.model").String(); got != "gpt-realtime" {
		t.Errorf("session.model = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "session.instructions").String(); got != "conduct the interview" {
		t.Errorf("session.instructions = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "expires_after.seconds").Int(); got != 600 {
		t.Errorf("expires_after.seconds = %d", got)
	}
	if got := gjson.GetBytes(gotBody, "session.tools.0.name").String(); got != "report_observation" {
		t.Errorf("session.tools[0].name = %q", got)
	}

	if grant.ClientSecret != "ek_abc123" {
		t.Errorf("client secret = %q", grant.ClientSecret)
	}
	if grant.ExpiresAt.Unix() != 1700000600 {
		t.Errorf("expires at = %v", grant.ExpiresAt)
	}
}

func TestMintRealtimeSessionNestedSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"client_secret": map[string]any{"value": "ek_nested"},
		})
	})

	grant, err := client.MintRealtimeSession(context.Background(), &RealtimeSessionRequest{Model: "gpt-realtime"})
	if err != nil {
		t.Fatalf("MintRealtimeSession: %v", err)
	}
	if grant.ClientSecret != "ek_nested" {
		t.Errorf("client secret = %q, want the nested form", grant.ClientSecret)
	}
}

func TestMintRealtimeSessionMissingSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "sess_1"})
	})

	if _, err := client.MintRealtimeSession(context.Background(), &RealtimeSessionRequest{Model: "gpt-realtime"}); err == nil {
		t.Error("expected error for a response without a client secret")
	}
}

func TestMintRealtimeSessionUpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := client.MintRealtimeSession(context.Background(), &RealtimeSessionRequest{Model: "gpt-realtime"})
	if err == nil {
		t.Fatal("expected error for a 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error does not carry the status: %v", err)
	}
}

func TestCompleteStructured(t *testing.T) {
	var gotBody []byte

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"score": 80}`}},
			},
		})
	})

	raw, err := client.CompleteStructured(context.Background(), &StructuredRequest{
		Model:      "gpt-4o-mini",
		System:     "assess",
		User:       "transcript",
		SchemaName: "final_evaluation",
		Schema:     map[string]any{"type": "object"},
	})
	if err != nil {
		t.Fatalf("CompleteStructured: %v", err)
	}

	if got := gjson.GetBytes(gotBody, "response_format.json_schema.name").String(); got != "final_evaluation" {
		t.Errorf("schema name = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "response_format.json_schema.strict").Bool(); !got {
		t.Error("strict mode not requested")
	}
	if got := gjson.GetBytes(gotBody, "messages.0.role").String(); got != "system" {
		t.Errorf("first message role = %q", got)
	}

	if gjson.GetBytes(raw, "score").Int() != 80 {
		t.Errorf("raw document = %s", raw)
	}
}

func TestCompleteStructuredRefusal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "", "refusal": "I can't help with that."}},
			},
		})
	})

	if _, err := client.CompleteStructured(context.Background(), &StructuredRequest{Model: "m"}); err == nil {
		t.Error("expected error for a refusal")
	}
}

func TestCompleteStructuredNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := client.CompleteStructured(context.Background(), &StructuredRequest{Model: "m"}); err == nil {
		t.Error("expected error for an empty choice list")
	}
}
