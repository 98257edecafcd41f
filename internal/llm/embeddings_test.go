package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080", "test-key", "test-model", 768)
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewEmbeddingsClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("NewEmbeddingsClient() ExpectedSize = %v, want 768", client.ExpectedSize)
	}
	if client.BatchSize != DefaultBatchSize {
		t.Errorf("NewEmbeddingsClient() BatchSize = %v, want %v", client.BatchSize, DefaultBatchSize)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name         string
		texts        []string
		expectedSize int
		serverResp   func(w http.ResponseWriter, r *http.Request)
		wantErr      bool
		wantCount    int
	}{
		{
			name:         "successful embedding",
			texts:        []string{"Hello", "World"},
			expectedSize: 768,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q, want Bearer test-key", got)
				}

				resp := EmbeddingsResponse{
					Data: []EmbeddingData{
						{Embedding: make([]float64, 768)},
						{Embedding: make([]float64, 768)},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr:   false,
			wantCount: 2,
		},
		{
			name:         "empty input",
			texts:        []string{},
			expectedSize: 768,
			serverResp:   func(w http.ResponseWriter, r *http.Request) {},
			wantErr:      true,
		},
		{
			name:         "count mismatch",
			texts:        []string{"a", "b"},
			expectedSize: 768,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 768)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:         "size mismatch",
			texts:        []string{"a"},
			expectedSize: 768,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 512)}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:         "server error",
			texts:        []string{"a"},
			expectedSize: 768,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "test-model", tt.expectedSize)

			got, err := client.EmbedTexts(context.Background(), tt.texts)
			if (err != nil) != tt.wantErr {
				t.Errorf("EmbedTexts() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(got) != tt.wantCount {
				t.Errorf("EmbedTexts() returned %d embeddings, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_Batches(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Input) > 2 {
			t.Errorf("batch of %d texts exceeds batch size 2", len(req.Input))
		}

		data := make([]EmbeddingData, len(req.Input))
		for i := range data {
			data[i] = EmbeddingData{Embedding: make([]float64, 4)}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 4)
	client.BatchSize = 2

	texts := []string{"one", "two", "three", "four", "five"}
	got, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(got) != len(texts) {
		t.Errorf("EmbedTexts() returned %d embeddings, want %d", len(got), len(texts))
	}
	if requests.Load() != 3 {
		t.Errorf("EmbedTexts() issued %d requests, want 3", requests.Load())
	}
}

func TestEmbeddingsClient_EmbedTexts_FailedBatchFailsCall(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}

		var req EmbeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		data := make([]EmbeddingData, len(req.Input))
		for i := range data {
			data[i] = EmbeddingData{Embedding: make([]float64, 4)}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 4)
	client.BatchSize = 1

	got, err := client.EmbedTexts(context.Background(), []string{"one", "two", "three"})
	if err == nil {
		t.Fatal("EmbedTexts() error = nil, want failure from second batch")
	}
	if got != nil {
		t.Errorf("EmbedTexts() returned a partial result alongside an error")
	}
}
