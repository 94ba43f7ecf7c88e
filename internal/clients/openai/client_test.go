package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/everyskill/everyskill-backend/internal/logger"
)

func testSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"answer"},
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_MAX_RETRIES", "1")

	c, err := NewClient(logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func responseBody(status, text string) map[string]any {
	return map[string]any{
		"status": status,
		"output": []map[string]any{
			{
				"type": "message",
				"role": "assistant",
				"content": []map[string]any{
					{"type": "output_text", "text": text},
				},
			},
		},
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(logger.NewNop()); err == nil {
		t.Fatal("missing OPENAI_API_KEY must fail client construction")
	}
}

func TestGenerateJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		format := req["text"].(map[string]any)["format"].(map[string]any)
		if format["type"] != "json_schema" || format["strict"] != true {
			t.Errorf("format = %+v", format)
		}
		json.NewEncoder(w).Encode(responseBody("completed", `{"answer":"42"}`))
	})

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "test_schema", testSchema())
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["answer"] != "42" {
		t.Fatalf("obj = %+v", obj)
	}
}

func TestGenerateJSONRejectsIncompleteResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := responseBody("incomplete", `{"answer":"trunc`)
		body["incomplete_details"] = map[string]any{"reason": "max_output_tokens"}
		json.NewEncoder(w).Encode(body)
	})

	_, err := c.GenerateJSON(context.Background(), "sys", "user", "test_schema", testSchema())
	if err == nil {
		t.Fatal("truncated response must be an error")
	}
	if !strings.Contains(err.Error(), "not completed") || !strings.Contains(err.Error(), "max_output_tokens") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateJSONRejectsRefusal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := responseBody("completed", "")
		body["refusal"] = "cannot review this"
		json.NewEncoder(w).Encode(body)
	})

	_, err := c.GenerateJSON(context.Background(), "sys", "user", "test_schema", testSchema())
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("err = %v, want refusal error", err)
	}
}

func TestGenerateJSONRetriesServerErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(responseBody("completed", `{"answer":"ok"}`))
	})

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "test_schema", testSchema())
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if obj["answer"] != "ok" {
		t.Fatalf("obj = %+v", obj)
	}
}

func TestGenerateJSONDoesNotRetryBadRequest(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad schema"}}`))
	})

	_, err := c.GenerateJSON(context.Background(), "sys", "user", "test_schema", testSchema())
	if err == nil {
		t.Fatal("400 must be an error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on 400)", attempts)
	}
}
