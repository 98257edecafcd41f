package vectorstore

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

// TestNewQdrantStore_URLParsing tests URL parsing logic without creating a real client.
// This avoids connection warnings in unit tests.
func TestNewQdrantStore_URLParsing(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://localhost:9000",
			wantHost: "localhost",
			wantPort: 9001,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334, // Default
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost", // Defaults to localhost
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsedURL, err := url.Parse(tt.urlStr)
			if err != nil {
				t.Fatalf("Failed to parse URL: %v", err)
			}

			// Mirror the URL parsing logic NewQdrantStore uses.
			host := parsedURL.Hostname()
			if host == "" {
				host = "localhost"
			}

			port := 6334
			if parsedURL.Port() != "" {
				httpPort, err := strconv.Atoi(parsedURL.Port())
				if err == nil {
					port = httpPort + 1
				}
			}

			if host != tt.wantHost {
				t.Errorf("Host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("Port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_Upsert_EmptyPoints(t *testing.T) {
	// Empty input returns early, before the client is touched.
	store := &QdrantStore{}

	err := store.Upsert(context.Background(), "test-collection", []Point{})
	if err != nil {
		t.Errorf("Upsert() with empty points should return early without error, got: %v", err)
	}
}

func TestQdrantStore_Delete_EmptyIDs(t *testing.T) {
	store := &QdrantStore{}

	err := store.Delete(context.Background(), "test-collection", []string{})
	if err != nil {
		t.Errorf("Delete() with empty IDs should return early without error, got: %v", err)
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}
	ctx := context.Background()

	_, err := store.Search(ctx, "test-collection", []float32{1.0, 2.0}, 0, nil)
	if err == nil {
		t.Error("Search() with k=0 should return error")
	}

	_, err = store.Search(ctx, "test-collection", []float32{1.0, 2.0}, -1, nil)
	if err == nil {
		t.Error("Search() with k=-1 should return error")
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil {
		t.Error("convertPayloadToMap() should return empty map, not nil")
	}
	if len(result) != 0 {
		t.Errorf("convertPayloadToMap() with nil should return empty map, got %d items", len(result))
	}

	payload := map[string]*qdrant.Value{
		"source":      {Kind: &qdrant.Value_StringValue{StringValue: "report.pdf"}},
		"chunk_index": {Kind: &qdrant.Value_IntegerValue{IntegerValue: 3}},
		"table_split": {Kind: &qdrant.Value_BoolValue{BoolValue: true}},
		"score":       {Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}},
		"nil_value":   nil,
	}

	result = convertPayloadToMap(payload)
	if result["source"] != "report.pdf" {
		t.Errorf("source = %v, want report.pdf", result["source"])
	}
	if result["chunk_index"] != int64(3) {
		t.Errorf("chunk_index = %v (%T), want int64(3)", result["chunk_index"], result["chunk_index"])
	}
	if result["table_split"] != true {
		t.Errorf("table_split = %v, want true", result["table_split"])
	}
	if result["score"] != 0.5 {
		t.Errorf("score = %v, want 0.5", result["score"])
	}
	if _, ok := result["nil_value"]; ok {
		t.Error("nil payload values should be dropped")
	}
}
