// Package ansi writes 24-bit ANSI color escapes and glyph ramps.
package ansi

import (
	"fmt"
	"strings"

	"github.com/MereWhiplash/neurocat/internal/rgb"
)

// Reset ends a colored run.
const Reset = "\x1b[0m"

// BarsH is the vertical fill ramp, indexed 0 (empty) to 8 (full block).
var BarsH = []rune(" ▁▂▃▄▅▆▇█")

// BarsV is the horizontal fill ramp used by Gauge, indexed 0 to 9.
var BarsV = []rune("  ▏▎▍▌▋▊▉█")

// Colorize wraps text in a 24-bit foreground/background escape followed by
// a reset.
func Colorize(fg, bg rgb.RGB, text string) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm%s"+Reset,
		fg[0], fg[1], fg[2], bg[0], bg[1], bg[2], text)
}

// BarH returns the vertical bar glyph for level, clamped to [0, 8].
func BarH(level int) string {
	return string(BarsH[min(max(level, 0), len(BarsH)-1)])
}

// Gauge renders score in [0, 1] as a horizontal bar width cells wide.
func Gauge(score float64, width int) string {
	bw := score * float64(width)
	var sb strings.Builder
	for x := 0; x < width; x++ {
		fx := float64(x)
		switch {
		case fx >= bw:
			sb.WriteRune(' ')
		case fx+1 >= bw:
			sb.WriteRune(BarsV[min(int((bw-fx)*9), len(BarsV)-1)])
		default:
			sb.WriteRune(BarsV[len(BarsV)-1])
		}
	}
	return sb.String()
}
