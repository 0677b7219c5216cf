// Package importer fills a word store from a word list, embedding each new
// word once.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/MereWhiplash/neurocat/internal/embedder"
	"github.com/MereWhiplash/neurocat/internal/storage"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// DefaultWordList is the system dictionary imported when no file is given.
const DefaultWordList = "/usr/share/dict/words"

// Store is the part of storage.Storage the importer needs.
type Store interface {
	Lookup(ctx context.Context, word string) ([]float32, bool, error)
	Insert(ctx context.Context, word string, embedding []float32) error
}

// Result counts what an import did.
type Result struct {
	Read     int `json:"read"`
	Skipped  int `json:"skipped"`
	Existing int `json:"existing"`
	Inserted int `json:"inserted"`
}

// Importer embeds and stores words.
type Importer struct {
	store    Store
	embedder embedder.Embedder
	// Progress receives each word as it is embedded. May be nil.
	Progress io.Writer
}

// New creates an Importer.
func New(store Store, emb embedder.Embedder) *Importer {
	return &Importer{store: store, embedder: emb}
}

// Accept trims line and reports whether it is a single importable word.
// Comments, blanks and entries containing an apostrophe, hyphen, period
// or space are rejected.
func Accept(line string) (string, bool) {
	word := strings.TrimSpace(line)
	if word == "" || strings.HasPrefix(word, "#") {
		return "", false
	}
	if strings.ContainsAny(word, "'-. ") {
		return "", false
	}
	return word, true
}

// Run imports every acceptable word in r. Words already stored are not
// embedded again.
func (im *Importer) Run(ctx context.Context, r io.Reader) (*Result, error) {
	res := &Result{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Read++

		word, ok := Accept(sc.Text())
		if !ok {
			res.Skipped++
			continue
		}

		_, found, err := im.store.Lookup(ctx, word)
		if err != nil {
			return res, fmt.Errorf("failed to lookup %q: %w", word, err)
		}
		if found {
			res.Existing++
			continue
		}

		if im.Progress != nil {
			fmt.Fprintln(im.Progress, word)
		}
		emb, err := im.embedder.Embed(ctx, word)
		if err != nil {
			return res, fmt.Errorf("failed to embed %q: %w", word, err)
		}

		if err := im.store.Insert(ctx, word, emb); err != nil {
			// case variants of an earlier line map to the same key
			if errors.Is(err, types.ErrDuplicateKey) {
				res.Existing++
				continue
			}
			return res, fmt.Errorf("failed to insert %q: %w", word, err)
		}
		res.Inserted++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("failed to read word list: %w", err)
	}
	return res, nil
}

// LockPath returns the lock file guarding imports into the store cfg
// describes: next to the database for sqlite, in the user cache directory
// otherwise.
func LockPath(cfg storage.Config) (string, error) {
	if cfg.Driver == "" || cfg.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return "", err
		}
		return cfg.SQLitePath + ".lock", nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine cache directory: %w", err)
	}
	dir = filepath.Join(dir, "neurocat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, cfg.Driver+"-import.lock"), nil
}

// AcquireLock takes the import lock at path, retrying until timeout.
// The returned function releases it.
func AcquireLock(path string, timeout time.Duration) (func(), error) {
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire import lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another import is in progress (lock: %s)", path)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
