package colorizer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MereWhiplash/neurocat/internal/ansi"
	"github.com/MereWhiplash/neurocat/internal/colorizer"
	"github.com/MereWhiplash/neurocat/internal/palette"
	"github.com/MereWhiplash/neurocat/internal/rgb"
	"github.com/MereWhiplash/neurocat/internal/storage"
)

// mockStore implements colorizer.Lookuper for testing
type mockStore struct {
	words   map[string][]float32
	lookups []string
	err     error
}

func (m *mockStore) Lookup(ctx context.Context, word string) ([]float32, bool, error) {
	m.lookups = append(m.lookups, word)
	if m.err != nil {
		return nil, false, m.err
	}
	emb, ok := m.words[storage.Key(word)]
	return emb, ok, nil
}

var (
	red      = rgb.RGB{255, 0, 0}
	green    = rgb.RGB{0, 255, 0}
	darkBlue = rgb.RGB{10, 20, 30}
	black    = rgb.RGB{0, 0, 0}
)

// testPalette has one axis per color and no subtraction, so scores equal
// the embedding components.
func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	p, err := palette.New(
		[]rgb.RGB{red, green, darkBlue},
		[][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		false,
	)
	if err != nil {
		t.Fatalf("palette.New failed: %v", err)
	}
	return p
}

func newStore() *mockStore {
	return &mockStore{words: map[string][]float32{
		"grass":  {0.1, 0.9, 0.2},
		"blood":  {0.9, 0.1, 0.3},
		"night":  {0.1, 0.2, 0.8},
		"cat":    {0.2, 0.5, 0.3},
		"box":    {0.9, 0, 0},
		"boxe":   {0, 0.9, 0},
		"metall": {0, 0, 0.7},
		"flat":   {0.5, 0.5, 0.5},
	}}
}

func TestWord_SingleColor(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Multicolor = false
	c := colorizer.New(newStore(), testPalette(t), opts)

	got, err := c.Word(context.Background(), "Grass")
	if err != nil {
		t.Fatalf("Word failed: %v", err)
	}
	if want := ansi.Colorize(green, rgb.Black, "Grass"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWord_BoostDark(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Multicolor = false
	c := colorizer.New(newStore(), testPalette(t), opts)

	got, _ := c.Word(context.Background(), "night")
	if want := ansi.Colorize(rgb.RGB{20, 40, 60}, rgb.Black, "night"); got != want {
		t.Errorf("expected boosted %q, got %q", want, got)
	}

	opts.BoostDark = false
	c = colorizer.New(newStore(), testPalette(t), opts)
	got, _ = c.Word(context.Background(), "night")
	if want := ansi.Colorize(darkBlue, rgb.Black, "night"); got != want {
		t.Errorf("expected unboosted %q, got %q", want, got)
	}
}

func TestWord_Multicolor(t *testing.T) {
	c := colorizer.New(newStore(), testPalette(t), colorizer.DefaultOptions())

	// blood ranks red, blue, green; only three letters fit the palette
	got, err := c.Word(context.Background(), "blood")
	if err != nil {
		t.Fatalf("Word failed: %v", err)
	}
	want := ansi.Colorize(red, rgb.Black, "b") +
		ansi.Colorize(rgb.RGB{20, 40, 60}, rgb.Black, "l") +
		ansi.Colorize(green, rgb.Black, "o")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWord_MulticolorShortWord(t *testing.T) {
	c := colorizer.New(newStore(), testPalette(t), colorizer.DefaultOptions())

	got, _ := c.Word(context.Background(), "box")
	if strings.Count(got, ansi.Reset) != 3 {
		t.Errorf("expected one escape per rune, got %q", got)
	}
}

func TestWord_Unknown(t *testing.T) {
	opts := colorizer.DefaultOptions()
	c := colorizer.New(newStore(), testPalette(t), opts)

	got, err := c.Word(context.Background(), "zzyzx")
	if err != nil {
		t.Fatalf("Word failed: %v", err)
	}
	if got != "zzyzx" {
		t.Errorf("expected plain word, got %q", got)
	}

	opts.HighlightUnknown = true
	c = colorizer.New(newStore(), testPalette(t), opts)
	got, _ = c.Word(context.Background(), "zzyzx")
	if want := ansi.Colorize(rgb.Yellow, rgb.Red, "zzyzx"); got != want {
		t.Errorf("expected highlighted %q, got %q", want, got)
	}
}

func TestResolve_Fallback(t *testing.T) {
	tests := []struct {
		word    string
		wantKey string
		found   bool
	}{
		{"cats", "cat", true},
		{"CATS", "cat", true},
		{"boxes", "box", true},
		{"metallic", "metall", true},
		{"grass", "grass", true},
		{"dogs", "", false},
		{"s", "", false},
	}
	c := colorizer.New(newStore(), testPalette(t), colorizer.DefaultOptions())
	for _, tt := range tests {
		_, key, found, err := c.Resolve(context.Background(), tt.word)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tt.word, err)
		}
		if found != tt.found || key != tt.wantKey {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.word, key, found, tt.wantKey, tt.found)
		}
	}
}

func TestResolve_FallbackOrder(t *testing.T) {
	store := newStore()
	delete(store.words, "box")
	c := colorizer.New(store, testPalette(t), colorizer.DefaultOptions())

	_, key, found, _ := c.Resolve(context.Background(), "boxes")
	if !found || key != "boxe" {
		t.Errorf("expected fallback to boxe, got (%q, %v)", key, found)
	}
	want := []string{"boxes", "box", "boxe"}
	if strings.Join(store.lookups, ",") != strings.Join(want, ",") {
		t.Errorf("expected lookups %v, got %v", want, store.lookups)
	}
}

func TestResolve_NoFallback(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Fallback = false
	c := colorizer.New(newStore(), testPalette(t), opts)

	_, _, found, _ := c.Resolve(context.Background(), "cats")
	if found {
		t.Error("expected cats to be unknown without fallback")
	}
}

func TestWord_StoreError(t *testing.T) {
	store := newStore()
	store.err = errors.New("disk on fire")
	c := colorizer.New(store, testPalette(t), colorizer.DefaultOptions())

	if _, err := c.Word(context.Background(), "grass"); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestWord_MinColorfulness(t *testing.T) {
	threshold := 0.5
	opts := colorizer.DefaultOptions()
	opts.MinColorfulness = &threshold
	c := colorizer.New(newStore(), testPalette(t), opts)

	// equal scores carry no color information
	got, _ := c.Word(context.Background(), "flat")
	if got != "flat" {
		t.Errorf("expected flat to stay uncolored, got %q", got)
	}

	// grass: abstract = 1.2/sqrt3 ≈ 0.693, range [0.1, 0.9], colorfulness ≈ 0.26
	got, _ = c.Word(context.Background(), "grass")
	if got != "grass" {
		t.Errorf("expected grass below threshold to stay uncolored, got %q", got)
	}

	threshold = 0.1
	got, _ = c.Word(context.Background(), "grass")
	if got == "grass" {
		t.Error("expected grass above threshold to be colored")
	}
}

func TestColorfulness(t *testing.T) {
	cf, ok := colorizer.Colorfulness([]float64{0, 1}, 0.25)
	if !ok || cf != 0.75 {
		t.Errorf("expected (0.75, true), got (%v, %v)", cf, ok)
	}

	if _, ok := colorizer.Colorfulness([]float64{0.2, 0.2}, 0.1); ok {
		t.Error("expected degenerate range to report false")
	}
}

func TestRanking_Ties(t *testing.T) {
	got := colorizer.Ranking([]float64{0.5, 0.9, 0.9, 0.1})
	want := []int{1, 2, 0, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestTokenize(t *testing.T) {
	line := "The cat's  hat, 42 times!"
	tokens := colorizer.Tokenize(line)

	var joined strings.Builder
	var words []string
	for _, tok := range tokens {
		joined.WriteString(tok.Text)
		if tok.Word {
			words = append(words, tok.Text)
		}
	}
	if joined.String() != line {
		t.Errorf("tokens do not rejoin: %q", joined.String())
	}
	want := []string{"The", "cat", "s", "hat", "42", "times"}
	if strings.Join(words, "|") != strings.Join(want, "|") {
		t.Errorf("expected words %v, got %v", want, words)
	}
}

func TestTokenize_Unicode(t *testing.T) {
	var words []string
	for _, tok := range colorizer.Tokenize("grüne Äpfel—süß") {
		if tok.Word {
			words = append(words, tok.Text)
		}
	}
	if strings.Join(words, "|") != "grüne|Äpfel|süß" {
		t.Errorf("unexpected words %v", words)
	}
}

func TestLine(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Multicolor = false
	c := colorizer.New(newStore(), testPalette(t), opts)

	got, err := c.Line(context.Background(), "grass, unknown!")
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	want := ansi.Colorize(green, rgb.Black, "grass") + ", unknown!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLine_Filters(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Multicolor = false
	opts.MinWordLength = 4
	opts.IgnoreWords = map[string]struct{}{"blood": {}}
	c := colorizer.New(newStore(), testPalette(t), opts)

	got, _ := c.Line(context.Background(), "cat BLOOD grass")
	want := "cat BLOOD " + ansi.Colorize(green, rgb.Black, "grass")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStream(t *testing.T) {
	opts := colorizer.DefaultOptions()
	opts.Multicolor = false
	c := colorizer.New(newStore(), testPalette(t), opts)

	in := strings.NewReader("grass\r\n\nnope")
	var out bytes.Buffer
	if err := c.Stream(context.Background(), in, &out); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	want := ansi.Colorize(green, rgb.Black, "grass") + "\n\nnope\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestStream_StripsOneTerminator(t *testing.T) {
	c := colorizer.New(newStore(), testPalette(t), colorizer.DefaultOptions())

	var out bytes.Buffer
	if err := c.Stream(context.Background(), strings.NewReader("nope\r\r\nmore\n\n"), &out); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	want := "nope\r\nmore\n\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestStream_LongLine(t *testing.T) {
	c := colorizer.New(newStore(), testPalette(t), colorizer.DefaultOptions())

	long := strings.Repeat("x", 200000)
	var out bytes.Buffer
	if err := c.Stream(context.Background(), strings.NewReader(long+"\n"), &out); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if out.Len() != len(long)+1 {
		t.Errorf("expected %d bytes, got %d", len(long)+1, out.Len())
	}
}

func TestParseWordList(t *testing.T) {
	set, err := colorizer.ParseWordList(strings.NewReader("# comment\nThe\n\n  and \n"))
	if err != nil {
		t.Fatalf("ParseWordList failed: %v", err)
	}
	if len(set) != 2 {
		t.Errorf("expected 2 words, got %d", len(set))
	}
	if _, ok := set["the"]; !ok {
		t.Error("expected lowercase 'the' in set")
	}
}
