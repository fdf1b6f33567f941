package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyreel/internal/match"
)

func TestSearchDecodesHits(t *testing.T) {
	var gotReq searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []searchResult{
			{
				VideoPath:        "footage/market.mp4",
				TimestampStart:   12.5,
				TimestampEnd:     20,
				FrameDescription: "crowded market",
				Transcript:       "prices have doubled",
				Score:            0.82,
				People:           []string{"vendor"},
				Location:         "outdoor market",
			},
		}})
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hits, err := client.Search(context.Background(), "crowded market", 5, match.GranularitySegments, "doc")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	h := hits[0]
	if h.VideoPath != "footage/market.mp4" || h.Start != 12.5 || h.End != 20 || h.Score != 0.82 {
		t.Fatalf("hit fields lost in decode: %+v", h)
	}
	if h.Location != "outdoor market" || len(h.People) != 1 {
		t.Fatalf("context fields lost in decode: %+v", h)
	}
	if gotReq.Query != "crowded market" || gotReq.Limit != 5 || gotReq.Granularity != "segments" || gotReq.Project != "doc" {
		t.Fatalf("request body mismatch: %+v", gotReq)
	}
}

func TestSearchSurfacesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Search(context.Background(), "query", 5, match.GranularitySegments, "")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("http status should surface, got %v", err)
	}
}

func TestSearchSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Error: "bad granularity"})
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Search(context.Background(), "query", 5, match.GranularitySegments, "")
	if err == nil || !strings.Contains(err.Error(), "bad granularity") {
		t.Fatalf("service error should surface, got %v", err)
	}
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hits, err := client.Search(context.Background(), "  ", 5, match.GranularitySegments, "")
	if err != nil || hits != nil || called {
		t.Fatalf("empty query must short-circuit: hits=%v err=%v called=%v", hits, err, called)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("missing base url must error")
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
