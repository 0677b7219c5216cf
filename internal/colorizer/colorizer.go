// Package colorizer renders words in the colors their embeddings associate
// with most strongly.
package colorizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MereWhiplash/neurocat/internal/ansi"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/rgb"
	"github.com/MereWhiplash/neurocat/internal/storage"
	"github.com/MereWhiplash/neurocat/internal/vecmath"
)

// Lookuper resolves a word to its embedding. storage.Storage satisfies it.
type Lookuper interface {
	Lookup(ctx context.Context, word string) ([]float32, bool, error)
}

// Options controls how words are colored.
type Options struct {
	// Multicolor colors each letter with the next strongest color instead
	// of coloring the whole word with the strongest one.
	Multicolor bool
	BoostDark  bool
	// Fallback retries unknown words with common suffixes stripped.
	Fallback bool
	// HighlightUnknown shows unknown words yellow on red instead of plain.
	HighlightUnknown bool
	// MinColorfulness leaves words below this colorfulness uncolored.
	// Nil disables the check.
	MinColorfulness *float64
	// IgnoreWords and MinWordLength only apply to Line: listed words and
	// words with fewer runes than MinWordLength pass through uncolored.
	IgnoreWords   map[string]struct{}
	MinWordLength int
}

// DefaultOptions returns the options used for colorizing running text.
func DefaultOptions() Options {
	return Options{
		Multicolor: true,
		BoostDark:  true,
		Fallback:   true,
	}
}

// Colorizer colors words using a store and a palette. It is safe for
// concurrent use if the store is.
type Colorizer struct {
	store   Lookuper
	palette *palette.Palette
	opts    Options
}

// New creates a Colorizer.
func New(store Lookuper, p *palette.Palette, opts Options) *Colorizer {
	return &Colorizer{store: store, palette: p, opts: opts}
}

// Options returns the options in effect.
func (c *Colorizer) Options() Options { return c.opts }

// WithMulticolor returns a copy of c with Multicolor set to m.
func (c *Colorizer) WithMulticolor(m bool) *Colorizer {
	cp := *c
	cp.opts.Multicolor = m
	return &cp
}

type fallbackRule struct {
	suffix string
	strip  []int
}

// Only the first rule whose suffix matches is tried.
var fallbackRules = []fallbackRule{
	{suffix: "ic", strip: []int{2}},
	{suffix: "es", strip: []int{2, 1}},
	{suffix: "s", strip: []int{1}},
}

// Resolve looks word up, falling back to stripped forms when enabled.
// It returns the key that matched.
func (c *Colorizer) Resolve(ctx context.Context, word string) ([]float32, string, bool, error) {
	emb, found, err := c.store.Lookup(ctx, word)
	if err != nil || found {
		return emb, storage.Key(word), found, err
	}
	if !c.opts.Fallback {
		return nil, "", false, nil
	}

	lower := storage.Key(word)
	for _, rule := range fallbackRules {
		if !strings.HasSuffix(lower, rule.suffix) {
			continue
		}
		for _, n := range rule.strip {
			stem := word[:len(word)-n]
			if stem == "" {
				continue
			}
			emb, found, err := c.store.Lookup(ctx, stem)
			if err != nil || found {
				return emb, storage.Key(stem), found, err
			}
		}
		break
	}
	return nil, "", false, nil
}

// Word returns word wrapped in color escapes.
func (c *Colorizer) Word(ctx context.Context, word string) (string, error) {
	emb, _, found, err := c.Resolve(ctx, word)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", word, err)
	}
	if !found {
		if c.opts.HighlightUnknown {
			return ansi.Colorize(rgb.Yellow, rgb.Red, word), nil
		}
		return word, nil
	}

	scores, err := c.palette.Score(emb)
	if err != nil {
		return "", fmt.Errorf("failed to score %q: %w", word, err)
	}

	if c.opts.MinColorfulness != nil {
		cf, ok := Colorfulness(scores.Colors, scores.Abstract)
		if !ok || cf < *c.opts.MinColorfulness {
			return word, nil
		}
	}

	if c.opts.Multicolor {
		return c.multicolor(word, scores.Colors), nil
	}
	return ansi.Colorize(c.foreground(vecmath.ArgMax(scores.Colors)), rgb.Black, word), nil
}

func (c *Colorizer) multicolor(word string, scores []float64) string {
	ranking := Ranking(scores)
	var sb strings.Builder
	i := 0
	for _, r := range word {
		// runes beyond the palette size are dropped
		if i >= len(ranking) {
			break
		}
		sb.WriteString(ansi.Colorize(c.foreground(ranking[i]), rgb.Black, string(r)))
		i++
	}
	return sb.String()
}

func (c *Colorizer) foreground(idx int) rgb.RGB {
	fg := c.palette.Color(idx)
	if c.opts.BoostDark {
		fg = rgb.BoostDark(fg)
	}
	return fg
}

// Ranking returns palette indices ordered by descending score. Equal
// scores keep ascending index order.
func Ranking(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}

// Colorfulness returns 1 - (abstract - min)/(max - min). It reports false
// when the scores span no range, in which case the word carries no color
// information.
func Colorfulness(scores []float64, abstract float64) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	lo, hi := vecmath.MinMax(scores)
	if hi == lo {
		return 0, false
	}
	return 1 - (abstract-lo)/(hi-lo), true
}
