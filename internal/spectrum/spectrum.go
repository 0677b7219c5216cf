// Package spectrum draws the full color association spectrum of a word as
// a grid of colored glyphs: a two-row bar chart over the grey ramp, then
// the hue rings at three brightness and three saturation levels.
package spectrum

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MereWhiplash/neurocat/internal/ansi"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/rgb"
)

var (
	ChartBG         = rgb.RGB{7, 7, 7}
	SpectroBG       = rgb.RGB{7, 7, 7}
	BlackSubstitute = rgb.RGB{24, 24, 24}
)

const (
	greySteps   = 9
	greyRepeat  = 3
	hues        = 24
	markerLevel = 50
)

// Options selects the rendering style.
type Options struct {
	// ColorBars draws bar glyphs in the color; otherwise cells are solid
	// background blocks.
	ColorBars bool
	// NormalizeColors draws every color at full brightness so that only
	// intensity varies.
	NormalizeColors bool
	// Monochrome draws every color as white.
	Monochrome bool
	Params     intensity.Params
}

// DefaultOptions returns bar rendering with the standard mapping tuning.
func DefaultOptions(subtracted bool) Options {
	return Options{
		ColorBars: true,
		Params:    intensity.DefaultParams(subtracted),
	}
}

// Renderer draws spectra for one palette.
type Renderer struct {
	palette *palette.Palette
	opts    Options
}

// New creates a Renderer.
func New(p *palette.Palette, opts Options) *Renderer {
	return &Renderer{palette: p, opts: opts}
}

type rowMode int

const (
	modeSpectrum rowMode = iota
	modeChartBottom
	modeChartTop
)

// cell is one grid position: a palette color, a fixed glyph or a blank.
type cell struct {
	color  rgb.RGB
	fixed  bool
	blank  bool
	fg, bg rgb.RGB
	glyph  string
}

type row struct {
	mode  rowMode
	cells []cell
}

func colorCells(colors []rgb.RGB, rep int) []cell {
	out := make([]cell, 0, len(colors)*rep)
	for _, c := range colors {
		for i := 0; i < rep; i++ {
			out = append(out, cell{color: c})
		}
	}
	return out
}

func fixed(fg rgb.RGB, glyph string) cell {
	return cell{fixed: true, fg: fg, bg: rgb.Black, glyph: glyph}
}

func grey(v uint8) rgb.RGB { return rgb.RGB{v, v, v} }

// layout returns the rows of the grid, top to bottom.
func layout() []row {
	greys := rgb.GreyRamp(greySteps, 0)

	var greyMarkers []cell
	for _, c := range colorCells(rgb.GreyRamp(greySteps, BlackSubstitute[0]), greyRepeat) {
		greyMarkers = append(greyMarkers, fixed(c.color, "▔"))
	}

	rows := []row{
		{modeChartTop, colorCells(greys, greyRepeat)},
		{modeChartBottom, colorCells(greys, greyRepeat)},
		{modeSpectrum, greyMarkers},
	}

	levels := rgb.Steps(4)[1:]
	markers := []rgb.RGB{grey(0x40), grey(0x80), grey(0xc0)}
	// brightest first
	for v := len(levels) - 1; v >= 0; v-- {
		if v < len(levels)-1 {
			rows = append(rows, row{mode: modeSpectrum})
		}
		for _, sat := range levels {
			cells := []cell{fixed(markers[v], "▕")}
			cells = append(cells, colorCells(rgb.HueRing(hues, sat, levels[v]), 1)...)
			rows = append(rows, row{modeSpectrum, cells})
		}
	}

	hueMarkers := []cell{{blank: true}}
	for _, c := range rgb.HueRing(hues, 1, 1) {
		hueMarkers = append(hueMarkers, fixed(rgb.Normalize(c, markerLevel), "▔"))
	}
	rows = append(rows, row{modeSpectrum, hueMarkers})
	return rows
}

// Render maps scores with strategy and returns the grid lines.
func (r *Renderer) Render(scores palette.Scores, strategy intensity.Strategy) ([]string, error) {
	if len(scores.Colors) != r.palette.Len() {
		return nil, fmt.Errorf("got %d scores for a palette of %d colors", len(scores.Colors), r.palette.Len())
	}
	levels, err := intensity.Map(strategy, scores.Colors, scores.Abstract, r.opts.Params)
	if err != nil {
		return nil, err
	}

	rows := layout()
	lines := make([]string, 0, len(rows))
	for _, rw := range rows {
		var sb strings.Builder
		for _, c := range rw.cells {
			switch {
			case c.blank:
				sb.WriteString(" ")
			case c.fixed:
				sb.WriteString(ansi.Colorize(c.fg, c.bg, c.glyph))
			default:
				s, err := r.cell(rw.mode, c.color, levels)
				if err != nil {
					return nil, err
				}
				sb.WriteString(s)
			}
		}
		lines = append(lines, sb.String())
	}
	return lines, nil
}

func (r *Renderer) cell(mode rowMode, col rgb.RGB, levels []float64) (string, error) {
	idx, err := r.palette.IndexOf(col)
	if err != nil {
		return "", err
	}
	ii := min(1.0, max(0.0, levels[idx]))

	if col == rgb.Black {
		col = BlackSubstitute
	}

	switch mode {
	case modeChartTop:
		return ansi.Colorize(col, ChartBG, ansi.BarH(int(ii*17)-8)), nil
	case modeChartBottom:
		return ansi.Colorize(col, ChartBG, ansi.BarH(int(ii*17))), nil
	}

	if r.opts.NormalizeColors {
		col = rgb.Normalize(col, 255)
	}
	if r.opts.Monochrome {
		col = rgb.White
	}
	if r.opts.ColorBars {
		return ansi.Colorize(rgb.Lerp(SpectroBG, col, ii), ChartBG, ansi.BarH(int(ii*float64(len(ansi.BarsH))))), nil
	}
	return ansi.Colorize(rgb.Black, rgb.Lerp(SpectroBG, col, ii), " "), nil
}

// Statistics summarizes raw scores, scaled by 100.
func Statistics(scores []float64) string {
	if len(scores) == 0 {
		return "no scores"
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	med := median(sorted)
	return fmt.Sprintf("median %3.1f range [%5.1f..%5.1f] max-min %5.1f max-median %5.1f",
		med*100, lo*100, hi*100, (hi-lo)*100, (hi-med)*100)
}

// median of sorted values, averaging the middle pair for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
