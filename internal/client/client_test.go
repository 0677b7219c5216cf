package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MereWhiplash/neurocat/internal/api"
	"github.com/MereWhiplash/neurocat/internal/client"
	"github.com/MereWhiplash/neurocat/internal/colorizer"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/spectrum"
	"github.com/MereWhiplash/neurocat/internal/storage"
	"github.com/MereWhiplash/neurocat/internal/types"
)

func TestClient_Colorize_Request(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/colorize" {
			t.Errorf("expected /v1/colorize, got %s", r.URL.Path)
		}
		if r.Header.Get(api.RequestIDHeader) == "" {
			t.Error("expected a request ID header")
		}

		var req api.ColorizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Text != "red sky" {
			t.Errorf("expected text 'red sky', got %q", req.Text)
		}
		if req.Multicolor == nil || *req.Multicolor {
			t.Error("expected multicolor to be sent as false")
		}

		json.NewEncoder(w).Encode(api.ColorizeResponse{Output: "colored"})
	}))
	defer server.Close()

	c := client.New(server.URL)
	out, err := c.Colorize(context.Background(), "red sky", false)
	if err != nil {
		t.Fatalf("Colorize failed: %v", err)
	}
	if out != "colored" {
		t.Errorf("expected 'colored', got %q", out)
	}
}

func TestClient_Scores_EscapesWord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/v1/words/caf%C3%A9" {
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
		}
		if r.URL.Query().Get("limit") != "4" {
			t.Errorf("expected limit 4, got %q", r.URL.Query().Get("limit"))
		}
		json.NewEncoder(w).Encode(api.ScoresResponse{Word: "café", Key: "café"})
	}))
	defer server.Close()

	c := client.New(server.URL)
	res, err := c.Scores(context.Background(), "café", 4)
	if err != nil {
		t.Fatalf("Scores failed: %v", err)
	}
	if res.Key != "café" {
		t.Errorf("expected key 'café', got %q", res.Key)
	}
}

func TestClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "word not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "boom"})
	}))
	defer server.Close()

	c := client.New(server.URL)

	_, err := c.Scores(context.Background(), "missing", 0)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = c.Stats(context.Background())
	if err == nil || errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected a non-NotFound error, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected server message in error, got %v", err)
	}
}

// mockStorage implements storage.Storage for testing
type mockStorage struct {
	words map[string][]float32
}

func (m *mockStorage) Insert(ctx context.Context, word string, embedding []float32) error {
	m.words[storage.Key(word)] = embedding
	return nil
}

func (m *mockStorage) Lookup(ctx context.Context, word string) ([]float32, bool, error) {
	emb, ok := m.words[storage.Key(word)]
	return emb, ok, nil
}

func (m *mockStorage) Stats(ctx context.Context) (*types.StoreStats, error) {
	return &types.StoreStats{Driver: "mock", Words: int64(len(m.words)), Dimension: 4}, nil
}

func (m *mockStorage) Close() error {
	return nil
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	colors := palette.ReferenceColors()
	vectors := make([][]float64, len(colors))
	for i := range vectors {
		v := make([]float64, 4)
		for j := range v {
			v[j] = math.Sin(float64(3*i + j))
		}
		vectors[i] = v
	}
	p, err := palette.New(colors, vectors, true)
	if err != nil {
		t.Fatalf("palette.New failed: %v", err)
	}

	store := &mockStorage{words: map[string][]float32{
		"moss": {0.2, 0.7, -0.1, 0.3},
	}}
	svc := service.New(store, p, nil, service.Options{
		Colorizer: colorizer.DefaultOptions(),
		Spectrum:  spectrum.DefaultOptions(true),
	})
	h := api.NewHandlers(svc)

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/colorize", h.Colorize)
		r.Get("/words/{word}", h.Scores)
		r.Get("/words/{word}/spectrum", h.Spectrum)
		r.Get("/stats", h.Stats)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestClient_AgainstAPI(t *testing.T) {
	c := client.New(newAPIServer(t).URL)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	out, err := c.Colorize(ctx, "moss", false)
	if err != nil {
		t.Fatalf("Colorize failed: %v", err)
	}
	if !strings.HasSuffix(out, "moss\x1b[0m") {
		t.Errorf("expected colored word, got %q", out)
	}

	scores, err := c.Scores(ctx, "mosses", 5)
	if err != nil {
		t.Fatalf("Scores failed: %v", err)
	}
	if scores.Key != "moss" || len(scores.Colors) != 5 {
		t.Errorf("unexpected scores %+v", scores)
	}

	spec, err := c.Spectrum(ctx, "moss", intensity.Rank)
	if err != nil {
		t.Fatalf("Spectrum failed: %v", err)
	}
	if spec.Mapping != "rank" || len(spec.Lines) != 15 {
		t.Errorf("unexpected spectrum mapping=%q lines=%d", spec.Mapping, len(spec.Lines))
	}

	_, err = c.Spectrum(ctx, "mosses", "")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound without fallback, got %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Words != 1 || stats.Dimension != 4 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
