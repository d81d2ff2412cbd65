package llmclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"matchday/config"
	apperrors "matchday/errors"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc, dims int) (*Client, *int) {
	t.Helper()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	logger, _ := zap.NewDevelopment()
	cfg := &config.Config{
		ProviderBaseURL:     srv.URL,
		ProviderAPIKey:      "test-key",
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: dims,
		ChatModel:           "gpt-4o-mini",
		ChatTemperature:     0.1,
		ProviderTimeout:     5 * time.Second,
	}
	return New(cfg, logger), &requests
}

func TestEmbedReturnsConfiguredDimensionality(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}],"usage":{"total_tokens":4}}`))
	}, 3)

	vec, err := client.Embed(context.Background(), "high scoring games")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("Embed() returned %d dimensions, want 3", len(vec))
	}
}

func TestEmbedEmptyInputFailsBeforeNetworkCall(t *testing.T) {
	client, requests := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	}, 1)

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := client.Embed(context.Background(), input)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Embed(%q) error = %v, want ErrValidation", input, err)
		}
	}
	if *requests != 0 {
		t.Errorf("%d network calls made for empty input, want 0", *requests)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2],"index":0}]}`))
	}, 3)

	_, err := client.Embed(context.Background(), "query")
	if !errors.Is(err, apperrors.ErrEmbedding) {
		t.Fatalf("Embed() error = %v, want ErrEmbedding", err)
	}
}

func TestEmbedUpstreamFailuresNotRetried(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "empty_payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":[]}`))
			},
		},
		{
			name: "malformed_json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := testClient(t, tt.handler, 3)
			_, err := client.Embed(context.Background(), "query")
			if !errors.Is(err, apperrors.ErrEmbedding) {
				t.Fatalf("Embed() error = %v, want ErrEmbedding", err)
			}
			if *requests != 1 {
				t.Errorf("made %d requests, want exactly 1 (no retries)", *requests)
			}
		})
	}
}

func TestChat(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Arsenal won 2-1 [match:m1]."}}]}`))
	}, 3)

	answer, err := client.Chat(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer != "Arsenal won 2-1 [match:m1]." {
		t.Errorf("Chat() = %q", answer)
	}
}

func TestChatFailuresClassifiedAsGeneration(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream_unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "no_choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices":[]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := testClient(t, tt.handler, 3)
			_, err := client.Chat(context.Background(), "system", "user")
			if !errors.Is(err, apperrors.ErrGeneration) {
				t.Fatalf("Chat() error = %v, want ErrGeneration", err)
			}
			if *requests != 1 {
				t.Errorf("made %d requests, want exactly 1 (no retries)", *requests)
			}
		})
	}
}
