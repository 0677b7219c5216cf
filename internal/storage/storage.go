package storage

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/x448/float16"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MereWhiplash/neurocat/internal/types"
)

// Storage is a persistent mapping from lowercase word to embedding.
// Records are insert-only: there is no update or delete.
type Storage interface {
	// Insert stores the embedding under the lowercased word.
	// It returns an error wrapping types.ErrDuplicateKey if the word exists.
	Insert(ctx context.Context, word string, embedding []float32) error
	// Lookup returns the embedding for the lowercased word.
	// A missing word is reported with found == false and a nil error.
	Lookup(ctx context.Context, word string) (embedding []float32, found bool, err error)
	Stats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}

// Key returns the store key for word.
func Key(word string) string {
	// cases.Caser keeps state, so one is built per call
	return cases.Lower(language.Und).String(word)
}

// EncodeHalf packs an embedding as little-endian IEEE-754 half floats.
func EncodeHalf(embedding []float32) []byte {
	buf := make([]byte, 2*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint16(buf[2*i:], float16.Fromfloat32(v).Bits())
	}
	return buf
}

// DecodeHalf unpacks a blob written by EncodeHalf.
func DecodeHalf(blob []byte) ([]float32, error) {
	if len(blob)%2 != 0 {
		return nil, fmt.Errorf("embedding blob has odd length %d", len(blob))
	}
	out := make([]float32, len(blob)/2)
	for i := range out {
		out[i] = float16.Frombits(binary.LittleEndian.Uint16(blob[2*i:])).Float32()
	}
	return out, nil
}

func duplicate(key string) error {
	return fmt.Errorf("word %q: %w", key, types.ErrDuplicateKey)
}
