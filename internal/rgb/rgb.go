// Package rgb provides 8-bit RGB triples and the color arithmetic used by
// the colorizer and the spectrum renderer.
package rgb

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is an 8-bit color. It is comparable, so palettes can be matched
// exactly with ==.
type RGB [3]uint8

var (
	Black  = RGB{0, 0, 0}
	White  = RGB{255, 255, 255}
	Yellow = RGB{255, 255, 0}
	Red    = RGB{255, 0, 0}
)

func (c RGB) String() string { return c.Hex() }

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Sum returns the sum of the three channels.
func (c RGB) Sum() int {
	return int(c[0]) + int(c[1]) + int(c[2])
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	var c RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// FromFloat converts channel values in [0, 1] to 8 bits as int(clamp(c*256, 0, 255)).
func FromFloat(r, g, b float64) RGB {
	return RGB{to8(r), to8(g), to8(b)}
}

func to8(c float64) uint8 {
	return uint8(clampf(c*256, 0, 255))
}

// HSVToRGB8 converts hue, saturation and value in [0, 1] to an 8-bit color.
func HSVToRGB8(h, s, v float64) RGB {
	return FromFloat(hsvToRGB(h, s, v))
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch ((i % 6) + 6) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// Lerp blends from a to b by w, with w clamped to [0, 1].
// Channels are truncated toward zero.
func Lerp(a, b RGB, w float64) RGB {
	w = clampf(w, 0, 1)
	var out RGB
	for i := range out {
		out[i] = uint8(float64(a[i]) + w*(float64(b[i])-float64(a[i])))
	}
	return out
}

// Normalize scales c so that its brightest channel equals strength.
func Normalize(c RGB, strength int) RGB {
	hi := int(max(c[0], c[1], c[2]))
	var out RGB
	for i := range out {
		v := int(c[i])
		if hi > 0 {
			v = v * strength / hi
		}
		out[i] = uint8(min(max(v, 0), 255))
	}
	return out
}

// BoostDark lifts colors that would be unreadable on a black background.
// Pure black becomes (80, 80, 80); colors whose channel sum is below 0xA8
// have every channel doubled and clamped to 255.
func BoostDark(c RGB) RGB {
	if c == Black {
		return RGB{80, 80, 80}
	}
	if c.Sum() < 0xa8 {
		var out RGB
		for i := range out {
			out[i] = uint8(min(int(c[i])*2, 255))
		}
		return out
	}
	return c
}

// Steps returns n evenly spaced values from 0 to 1 inclusive. The values
// are computed as i*(1/(n-1)) with the last pinned to 1, which keeps
// generated palettes bit-identical to the stored ones.
func Steps(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	step := 1.0 / float64(n-1)
	for i := range out {
		out[i] = float64(i) * step
	}
	out[n-1] = 1
	return out
}

// GreyRamp returns n greys from black to white, with every channel raised
// to at least darkest.
func GreyRamp(n int, darkest uint8) []RGB {
	out := make([]RGB, 0, n)
	for _, v := range Steps(n) {
		c := HSVToRGB8(0, 0, v)
		for i := range c {
			c[i] = max(c[i], darkest)
		}
		out = append(out, c)
	}
	return out
}

// HueRing returns n hues evenly spaced around the color wheel, starting at
// red and excluding the endpoint.
func HueRing(n int, sat, val float64) []RGB {
	out := make([]RGB, 0, n)
	step := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, HSVToRGB8(float64(i)*step, sat, val))
	}
	return out
}

func clampf(x, lo, hi float64) float64 {
	return min(max(x, lo), hi)
}
