package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MereWhiplash/neurocat/internal/colorizer"
	"github.com/MereWhiplash/neurocat/internal/embedder"
	"github.com/MereWhiplash/neurocat/internal/importer"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/spectrum"
	"github.com/MereWhiplash/neurocat/internal/storage"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// Service ties the word store and the palette to the colorizer and the
// spectrum renderer. It is shared by the CLI, the HTTP API and the MCP
// server.
type Service struct {
	storage   storage.Storage
	palette   *palette.Palette
	embedder  embedder.Embedder
	colorizer *colorizer.Colorizer
	spectrum  *spectrum.Renderer
}

// Options configures a Service.
type Options struct {
	Colorizer colorizer.Options
	Spectrum  spectrum.Options
}

// New creates a new service. emb may be nil if words are never imported.
func New(store storage.Storage, p *palette.Palette, emb embedder.Embedder, opts Options) *Service {
	return &Service{
		storage:   store,
		palette:   p,
		embedder:  emb,
		colorizer: colorizer.New(store, p, opts.Colorizer),
		spectrum:  spectrum.New(p, opts.Spectrum),
	}
}

// ColorScore is one palette color and a word's association with it.
type ColorScore struct {
	Color string  `json:"color"`
	Score float64 `json:"score"`
}

// WordScores describes how a word associates with the palette.
type WordScores struct {
	Word         string       `json:"word"`
	Key          string       `json:"key"`
	Abstract     float64      `json:"abstract"`
	Colorfulness *float64     `json:"colorfulness,omitempty"`
	Colors       []ColorScore `json:"colors"`
}

// SpectrumResult is a rendered spectrum.
type SpectrumResult struct {
	Word       string   `json:"word"`
	Mapping    string   `json:"mapping"`
	Statistics string   `json:"statistics"`
	Lines      []string `json:"lines"`
}

// Colorizer returns the configured colorizer.
func (s *Service) Colorizer() *colorizer.Colorizer { return s.colorizer }

// Palette returns the loaded palette.
func (s *Service) Palette() *palette.Palette { return s.palette }

// Colorize colors every word of text, line by line.
func (s *Service) Colorize(ctx context.Context, text string, multicolor bool) (string, error) {
	c := s.colorizer.WithMulticolor(multicolor)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		out, err := c.Line(ctx, line)
		if err != nil {
			return "", err
		}
		lines[i] = out
	}
	return strings.Join(lines, "\n"), nil
}

// Scores returns the palette colors ranked by association with word,
// truncated to limit entries when limit > 0. Unknown words return an error
// wrapping types.ErrNotFound.
func (s *Service) Scores(ctx context.Context, word string, limit int) (*WordScores, error) {
	emb, key, found, err := s.colorizer.Resolve(ctx, word)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("word %q: %w", word, types.ErrNotFound)
	}

	sc, err := s.palette.Score(emb)
	if err != nil {
		return nil, err
	}

	ranking := colorizer.Ranking(sc.Colors)
	if limit > 0 && limit < len(ranking) {
		ranking = ranking[:limit]
	}

	res := &WordScores{
		Word:     word,
		Key:      key,
		Abstract: sc.Abstract,
		Colors:   make([]ColorScore, 0, len(ranking)),
	}
	if cf, ok := colorizer.Colorfulness(sc.Colors, sc.Abstract); ok {
		res.Colorfulness = &cf
	}
	for _, idx := range ranking {
		res.Colors = append(res.Colors, ColorScore{
			Color: s.palette.Color(idx).Hex(),
			Score: sc.Colors[idx],
		})
	}
	return res, nil
}

// Spectrum renders the association spectrum of word using mapping. The
// word must be stored exactly; no suffix fallback is tried.
func (s *Service) Spectrum(ctx context.Context, word string, mapping intensity.Strategy) (*SpectrumResult, error) {
	emb, found, err := s.storage.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("word %q is not in the database: %w", word, types.ErrNotFound)
	}

	sc, err := s.palette.Score(emb)
	if err != nil {
		return nil, err
	}
	lines, err := s.spectrum.Render(sc, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to render spectrum: %w", err)
	}

	return &SpectrumResult{
		Word:       word,
		Mapping:    string(mapping),
		Statistics: spectrum.Statistics(sc.Colors),
		Lines:      lines,
	}, nil
}

// Stats reports store and palette sizes.
func (s *Service) Stats(ctx context.Context) (*types.StoreStats, error) {
	return s.storage.Stats(ctx)
}

// Import embeds and stores the words listed in r.
func (s *Service) Import(ctx context.Context, r io.Reader, progress io.Writer) (*importer.Result, error) {
	if s.embedder == nil {
		return nil, errors.New("no embedder configured")
	}
	im := importer.New(s.storage, s.embedder)
	im.Progress = progress
	return im.Run(ctx, r)
}

// Close releases the store.
func (s *Service) Close() error {
	return s.storage.Close()
}
