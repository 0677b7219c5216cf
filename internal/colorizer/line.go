package colorizer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MereWhiplash/neurocat/internal/storage"
)

// separatorRe matches runs of non-word characters.
var separatorRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Token is a piece of a line: either a word or the separator between words.
type Token struct {
	Text string
	Word bool
}

// Tokenize splits line into alternating word and separator tokens. Joining
// the token texts gives back line.
func Tokenize(line string) []Token {
	var tokens []Token
	last := 0
	for _, loc := range separatorRe.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			tokens = append(tokens, Token{Text: line[last:loc[0]], Word: true})
		}
		tokens = append(tokens, Token{Text: line[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(line) {
		tokens = append(tokens, Token{Text: line[last:], Word: true})
	}
	return tokens
}

// Line colors every word in line and keeps separators verbatim.
func (c *Colorizer) Line(ctx context.Context, line string) (string, error) {
	var sb strings.Builder
	for _, tok := range Tokenize(line) {
		if !tok.Word || c.skip(tok.Text) {
			sb.WriteString(tok.Text)
			continue
		}
		s, err := c.Word(ctx, tok.Text)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (c *Colorizer) skip(word string) bool {
	if c.opts.MinWordLength > 0 && utf8.RuneCountInString(word) < c.opts.MinWordLength {
		return true
	}
	if c.opts.IgnoreWords != nil {
		if _, ok := c.opts.IgnoreWords[storage.Key(word)]; ok {
			return true
		}
	}
	return false
}

// Stream colors r line by line into w. Lines may be of any length. Output
// is flushed after every line so interactive input shows up immediately.
func (c *Colorizer) Stream(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		if line == "" && readErr != nil {
			return nil
		}

		out, err := c.Line(ctx, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		if err != nil {
			return err
		}
		bw.WriteString(out)
		bw.WriteByte('\n')
		if err := bw.Flush(); err != nil {
			return err
		}

		if readErr != nil {
			return nil
		}
	}
}

// ParseWordList reads one word per line, skipping blanks and '#' comments,
// into a lowercase set.
func ParseWordList(r io.Reader) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		set[storage.Key(w)] = struct{}{}
	}
	return set, sc.Err()
}
