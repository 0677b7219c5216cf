// Package palette loads the reference color palette and scores word
// embeddings against it.
//
// A palette is an ordered list of N colors, each paired with a
// D-dimensional unit vector in the same space as the word embeddings. At
// load time the palette derives an abstract vector: the direction that
// scores every color equally, i.e. carries no color information. With
// subtraction enabled the abstract vector is removed from every color
// vector and then zeroed.
package palette

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/x448/float16"
	"gonum.org/v1/gonum/mat"

	"github.com/MereWhiplash/neurocat/internal/rgb"
	"github.com/MereWhiplash/neurocat/internal/types"
	"github.com/MereWhiplash/neurocat/internal/vecmath"
)

// rcondEps is the relative cutoff for small singular values, scaled by
// max(N, D). Vectors are stored at half precision, so single precision
// epsilon is used.
const rcondEps = 0x1p-23

// Palette is immutable after construction and safe for concurrent use.
type Palette struct {
	colors     []rgb.RGB
	vectors    [][]float64
	abstract   []float64
	subtracted bool
	index      map[rgb.RGB]int
}

// Scores is the association of one embedding with every palette color,
// plus its association with the abstract vector.
type Scores struct {
	Colors   []float64 `json:"colors"`
	Abstract float64   `json:"abstract"`
}

// New builds a palette from colors and their vectors. The vectors are
// copied. If subtract is set the abstract vector is removed from every
// color vector.
func New(colors []rgb.RGB, vectors [][]float64, subtract bool) (*Palette, error) {
	if len(colors) == 0 {
		return nil, errors.New("palette: no colors")
	}
	if len(colors) != len(vectors) {
		return nil, fmt.Errorf("palette: %d colors but %d vectors", len(colors), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("palette: zero-dimensional vectors")
	}

	p := &Palette{
		colors:  append([]rgb.RGB(nil), colors...),
		vectors: make([][]float64, len(vectors)),
		index:   make(map[rgb.RGB]int, len(colors)),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("palette: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		p.vectors[i] = append([]float64(nil), v...)
	}
	for i, c := range p.colors {
		if _, ok := p.index[c]; !ok {
			p.index[c] = i
		}
	}

	abstract, err := ComputeAbstract(p.vectors)
	if err != nil {
		return nil, err
	}
	p.abstract = abstract

	if subtract {
		p.applySubtraction()
	}
	return p, nil
}

// ComputeAbstract returns the normalized minimum-norm least-squares
// solution m of V·m = 1.
func ComputeAbstract(vectors [][]float64) ([]float64, error) {
	n, d := len(vectors), len(vectors[0])
	flat := make([]float64, 0, n*d)
	for _, v := range vectors {
		flat = append(flat, v...)
	}

	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(n, d, flat), mat.SVDThin); !ok {
		return nil, errors.New("palette: SVD did not converge")
	}

	m := mat.NewVecDense(d, nil)
	rank := svd.Rank(rcondEps * float64(max(n, d)))
	if rank > 0 {
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		_ = svd.SolveVecTo(m, mat.NewVecDense(n, ones), rank)
	}
	return vecmath.Normalize(m.RawVector().Data), nil
}

func (p *Palette) applySubtraction() {
	for i, v := range p.vectors {
		diff := make([]float64, len(v))
		for j := range v {
			diff[j] = v[j] - p.abstract[j]
		}
		p.vectors[i] = vecmath.Normalize(diff)
	}
	p.abstract = make([]float64, len(p.abstract))
	p.subtracted = true
}

// Load reads a palette resource from path.
func Load(path string, subtract bool) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette: %w", err)
	}
	defer f.Close()

	p, err := Decode(bufio.NewReader(f), subtract)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette %s: %w", path, err)
	}
	return p, nil
}

// Decode reads a palette resource: an N×3 uint8 NPY array of colors
// followed immediately by an N×D float NPY array of vectors.
func Decode(r io.Reader, subtract bool) (*Palette, error) {
	rgbs, err := readNPY(r)
	if err != nil {
		return nil, fmt.Errorf("colors: %w", err)
	}
	if rgbs.kind != 'u' || len(rgbs.shape) != 2 || rgbs.shape[1] != 3 {
		return nil, fmt.Errorf("colors: expected N×3 uint8 array, got %c%d %v", rgbs.kind, rgbs.size, rgbs.shape)
	}

	vecs, err := readNPY(r)
	if err != nil {
		return nil, fmt.Errorf("vectors: %w", err)
	}
	if vecs.kind != 'f' || len(vecs.shape) != 2 {
		return nil, fmt.Errorf("vectors: expected N×D float array, got %c%d %v", vecs.kind, vecs.size, vecs.shape)
	}

	n, d := rgbs.shape[0], vecs.shape[1]
	if vecs.shape[0] != n {
		return nil, fmt.Errorf("palette: %d colors but %d vectors", n, vecs.shape[0])
	}

	colors := make([]rgb.RGB, n)
	for i := range colors {
		copy(colors[i][:], rgbs.data[3*i:3*i+3])
	}
	flat := vecs.float64s()
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = flat[i*d : (i+1)*d]
	}
	return New(colors, vectors, subtract)
}

// Encode writes colors and vectors as a palette resource, storing the
// vectors at half precision.
func Encode(w io.Writer, colors []rgb.RGB, vectors [][]float64) error {
	if len(colors) != len(vectors) || len(colors) == 0 {
		return fmt.Errorf("palette: %d colors but %d vectors", len(colors), len(vectors))
	}
	d := len(vectors[0])

	rgbData := make([]byte, 0, 3*len(colors))
	for _, c := range colors {
		rgbData = append(rgbData, c[:]...)
	}
	if err := writeNPY(w, "|u1", []int{len(colors), 3}, rgbData); err != nil {
		return err
	}

	vecData := make([]byte, 2*len(vectors)*d)
	for i, v := range vectors {
		if len(v) != d {
			return fmt.Errorf("palette: vector %d has dimension %d, want %d", i, len(v), d)
		}
		for j, x := range v {
			binary.LittleEndian.PutUint16(vecData[2*(i*d+j):], float16.Fromfloat32(float32(x)).Bits())
		}
	}
	return writeNPY(w, "<f2", []int{len(vectors), d}, vecData)
}

// Len returns the number of colors N.
func (p *Palette) Len() int { return len(p.colors) }

// Dim returns the vector dimension D.
func (p *Palette) Dim() int { return len(p.abstract) }

// Subtracted reports whether the abstract vector was subtracted.
func (p *Palette) Subtracted() bool { return p.subtracted }

// Color returns the i-th color in load order.
func (p *Palette) Color(i int) rgb.RGB { return p.colors[i] }

// Colors returns a copy of the colors in load order.
func (p *Palette) Colors() []rgb.RGB {
	return append([]rgb.RGB(nil), p.colors...)
}

// Abstract returns a copy of the abstract vector.
func (p *Palette) Abstract() []float64 {
	return append([]float64(nil), p.abstract...)
}

// ComputeScores returns the dot product of x with every color vector and
// with the abstract vector. It panics if len(x) != Dim().
func (p *Palette) ComputeScores(x []float64) ([]float64, float64) {
	scores := make([]float64, len(p.vectors))
	for i, v := range p.vectors {
		scores[i] = vecmath.Dot(v, x)
	}
	return scores, vecmath.Dot(p.abstract, x)
}

// Score checks the dimension of a stored embedding and scores it.
func (p *Palette) Score(embedding []float32) (Scores, error) {
	if len(embedding) != p.Dim() {
		return Scores{}, fmt.Errorf("embedding has dimension %d, palette has %d", len(embedding), p.Dim())
	}
	colors, abstract := p.ComputeScores(vecmath.Widen(embedding))
	return Scores{Colors: colors, Abstract: abstract}, nil
}

// IndexOf returns the load-order index of the first color equal to c.
func (p *Palette) IndexOf(c rgb.RGB) (int, error) {
	i, ok := p.index[c]
	if !ok {
		return 0, fmt.Errorf("color %s: %w", c.Hex(), types.ErrNotFound)
	}
	return i, nil
}

// LookupColorVector returns a copy of the vector for the first color
// exactly equal to c.
func (p *Palette) LookupColorVector(c rgb.RGB) ([]float64, error) {
	i, err := p.IndexOf(c)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), p.vectors[i]...), nil
}

// ReferenceColors returns the canonical 225-color palette: a 9-step grey
// ramp, then for each of three brightness levels and three saturation
// levels a ring of 24 hues.
func ReferenceColors() []rgb.RGB {
	colors := rgb.GreyRamp(9, 0)
	levels := rgb.Steps(4)[1:]
	for _, val := range levels {
		for _, sat := range levels {
			colors = append(colors, rgb.HueRing(24, sat, val)...)
		}
	}
	return colors
}
