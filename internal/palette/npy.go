package palette

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/x448/float16"
)

// NPY is numpy's array file format. Palette resources are two NPY arrays
// written back-to-back, so the reader consumes exactly one array per call.

var npyMagic = []byte("\x93NUMPY")

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

type npyArray struct {
	kind  byte // 'u', 'i' or 'f'
	size  int  // bytes per element
	order binary.ByteOrder
	shape []int
	data  []byte
}

func (a *npyArray) elements() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

func readNPY(r io.Reader) (*npyArray, error) {
	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("npy: failed to read magic: %w", err)
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return nil, errors.New("npy: bad magic")
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: failed to read header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: failed to read header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("npy: unsupported version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("npy: failed to read header: %w", err)
	}

	a, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, err
	}

	a.data = make([]byte, a.elements()*a.size)
	if _, err := io.ReadFull(r, a.data); err != nil {
		return nil, fmt.Errorf("npy: truncated data: %w", err)
	}
	return a, nil
}

func parseNPYHeader(h string) (*npyArray, error) {
	m := descrRe.FindStringSubmatch(h)
	if m == nil {
		return nil, fmt.Errorf("npy: missing descr in header %q", h)
	}
	descr := m[1]
	if len(descr) < 3 {
		return nil, fmt.Errorf("npy: unsupported descr %q", descr)
	}

	a := &npyArray{kind: descr[1]}
	switch descr[0] {
	case '<', '|', '=':
		a.order = binary.LittleEndian
	case '>':
		a.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("npy: unsupported descr %q", descr)
	}
	size, err := strconv.Atoi(descr[2:])
	if err != nil {
		return nil, fmt.Errorf("npy: unsupported descr %q", descr)
	}
	a.size = size

	switch {
	case a.kind == 'u' && size == 1:
	case a.kind == 'f' && (size == 2 || size == 4 || size == 8):
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q", descr)
	}

	if m := fortranRe.FindStringSubmatch(h); m != nil && m[1] == "True" {
		return nil, errors.New("npy: fortran order is not supported")
	}

	m = shapeRe.FindStringSubmatch(h)
	if m == nil {
		return nil, fmt.Errorf("npy: missing shape in header %q", h)
	}
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("npy: bad shape %q", m[1])
		}
		a.shape = append(a.shape, d)
	}
	return a, nil
}

// float64s decodes a float array.
func (a *npyArray) float64s() []float64 {
	out := make([]float64, a.elements())
	for i := range out {
		b := a.data[i*a.size:]
		switch a.size {
		case 2:
			out[i] = float64(float16.Frombits(a.order.Uint16(b)).Float32())
		case 4:
			out[i] = float64(math.Float32frombits(a.order.Uint32(b)))
		case 8:
			out[i] = math.Float64frombits(a.order.Uint64(b))
		}
	}
	return out
}

func writeNPY(w io.Writer, descr string, shape []int, data []byte) error {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)

	// pad with spaces so the data starts on a 64-byte boundary
	total := len(npyMagic) + 2 + 2 + len(header) + 1
	if pad := (64 - total%64) % 64; pad > 0 {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"
	if len(header) > math.MaxUint16 {
		return errors.New("npy: header too long")
	}

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
