package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/httputil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// completionServer returns an OpenAI-compatible endpoint that always
// answers with content, counting requests.
func completionServer(t *testing.T, content string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestGenerate(t *testing.T) {
	graphJSON := `{"nodes":[{"id":"1","label":"DNS","summary":"Name system"},{"id":"2","label":"Resolver"}],"edges":[{"id":"e1-2","source":"1","target":"2","label":"queries via"}]}`
	calls := 0
	srv := completionServer(t, graphJSON, &calls)
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, nil, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	raw, err := c.Generate(context.Background(), "How does DNS work?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(raw.Nodes) != 2 || len(raw.Edges) != 1 {
		t.Fatalf("raw graph = %+v", raw)
	}
	if raw.Nodes[0].Label != "DNS" || string(raw.Edges[0].Source) != "1" {
		t.Errorf("unexpected decode: %+v", raw)
	}
}

func TestGenerateMalformedJSON(t *testing.T) {
	calls := 0
	srv := completionServer(t, "sorry, here is prose instead of JSON", &calls)
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, nil, testLogger())
	_, err := c.Generate(context.Background(), "topic")
	if errors.GetCode(err) != errors.ErrCodeInternal {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInternal)
	}
}

func TestExplainUsesCache(t *testing.T) {
	calls := 0
	srv := completionServer(t, "  **Resolvers** walk the delegation chain.  ", &calls)
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, cache, testLogger())

	first, err := c.Explain(context.Background(), "DNS", "Recursive Resolver")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if first != "**Resolvers** walk the delegation chain." {
		t.Errorf("explanation not trimmed: %q", first)
	}

	second, err := c.Explain(context.Background(), "DNS", "Recursive Resolver")
	if err != nil {
		t.Fatalf("Explain (cached): %v", err)
	}
	if second != first {
		t.Errorf("cached value %q differs from %q", second, first)
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestUnauthorizedAbortsWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "bad"}, nil, testLogger())
	_, err := c.Explain(context.Background(), "DNS", "Resolver")
	if errors.GetCode(err) != errors.ErrCodeUnauthorized {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnauthorized)
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      errors.Code
		wantRetryable bool
	}{
		{"auth failure", &openai.APIError{HTTPStatusCode: 401}, errors.ErrCodeUnauthorized, false},
		{"forbidden", &openai.APIError{HTTPStatusCode: 403}, errors.ErrCodeUnauthorized, false},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, errors.ErrCodeNetwork, true},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, errors.ErrCodeNetwork, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, errors.ErrCodeInternal, false},
		{"transport failure", stderrors.New("connection refused"), errors.ErrCodeNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if errors.GetCode(got) != tt.wantCode {
				t.Errorf("code = %v, want %v", errors.GetCode(got), tt.wantCode)
			}
			retryable := stderrors.As(got, new(*httputil.RetryableError))
			if retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", retryable, tt.wantRetryable)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil, testLogger())
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}
