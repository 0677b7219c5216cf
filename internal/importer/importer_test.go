package importer_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MereWhiplash/neurocat/internal/importer"
	"github.com/MereWhiplash/neurocat/internal/storage"
)

// mockEmbedder implements embedder.Embedder for testing
type mockEmbedder struct {
	calls []string
	err   error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, text)
	return []float32{float32(len(text)), 1}, nil
}

func setupStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAccept(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"crimson\n", "crimson", true},
		{"  Teal  ", "Teal", true},
		{"# comment", "", false},
		{"", "", false},
		{"don't", "", false},
		{"well-known", "", false},
		{"e.g", "", false},
		{"ice cream", "", false},
	}
	for _, tt := range tests {
		got, ok := importer.Accept(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Accept(%q) = (%q, %v), want (%q, %v)", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRun(t *testing.T) {
	store := setupStore(t)
	emb := &mockEmbedder{}
	im := importer.New(store, emb)
	var progress bytes.Buffer
	im.Progress = &progress

	ctx := context.Background()
	if err := store.Insert(ctx, "red", []float32{9, 9}); err != nil {
		t.Fatal(err)
	}

	list := "# colors\nred\nGreen\nblue-ish\ngreen\nBlue\n"
	res, err := im.Run(ctx, strings.NewReader(list))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Read != 6 || res.Skipped != 2 || res.Existing != 2 || res.Inserted != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if strings.Join(emb.calls, ",") != "Green,Blue" {
		t.Errorf("expected only new words embedded, got %v", emb.calls)
	}
	if progress.String() != "Green\nBlue\n" {
		t.Errorf("unexpected progress output %q", progress.String())
	}

	got, found, _ := store.Lookup(ctx, "green")
	if !found || got[0] != 5 {
		t.Errorf("expected green stored, got %v (found=%v)", got, found)
	}
	got, _, _ = store.Lookup(ctx, "red")
	if got[0] != 9 {
		t.Errorf("expected existing red untouched, got %v", got)
	}
}

func TestRun_EmbedError(t *testing.T) {
	store := setupStore(t)
	im := importer.New(store, &mockEmbedder{err: errors.New("model offline")})

	if _, err := im.Run(context.Background(), strings.NewReader("teal\n")); err == nil {
		t.Error("expected embed error")
	}
}

func TestRun_Canceled(t *testing.T) {
	store := setupStore(t)
	im := importer.New(store, &mockEmbedder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := im.Run(ctx, strings.NewReader("teal\n")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLockPath(t *testing.T) {
	p, err := importer.LockPath(storage.Config{Driver: "sqlite", SQLitePath: "/tmp/words.db"})
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/words.db.lock" {
		t.Errorf("expected /tmp/words.db.lock, got %s", p)
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.lock")

	release, err := importer.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	if _, err := importer.AcquireLock(path, 10*time.Millisecond); err == nil {
		t.Error("expected second lock to time out")
	}

	release()
	release2, err := importer.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock after release failed: %v", err)
	}
	release2()
}
