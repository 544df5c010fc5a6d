// Package tokenizer implements TK: a forward cursor over the lexical
// tokens of a source file, skipping whitespace and both comment
// styles, as spec.md §4.3 describes.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/libklein/jackc/internal/token"
)

var (
	symbolRegex     = regexp.MustCompile(`^[{}\[\]().,;+\-*/&|<>=~]`)
	intRegex        = regexp.MustCompile(`^\d+`)
	stringRegex     = regexp.MustCompile(`^"[^"\n]*"`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_]\w*`)

	lineCommentRegex  = regexp.MustCompile(`^\s*//`)
	blockCommentStart = regexp.MustCompile(`^\s*/\*`)
)

// Tokenizer owns the input and a (currentLine, offset) cursor. Exactly
// one token is current at any time once constructed, unless the input
// is empty or exhausted.
type Tokenizer struct {
	lines   []string
	curLine int
	offset  int

	current    token.Token
	hasCurrent bool
	err        error
}

// New reads all of r and positions the cursor on the first token.
func New(r io.Reader) (*Tokenizer, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: read input: %w", err)
	}

	t := &Tokenizer{lines: lines}
	t.advance()
	return t, t.err
}

// Current returns the token under the cursor. Undefined once HasMore
// is false.
func (t *Tokenizer) Current() token.Token {
	return t.current
}

// HasMore reports whether a current token is available.
func (t *Tokenizer) HasMore() bool {
	return t.hasCurrent
}

// Err returns the error recorded while advancing, if any. Read errors
// are returned by New, and characters that start no token are skipped
// rather than reported, so Err is nil for any Tokenizer New returns.
func (t *Tokenizer) Err() error {
	return t.err
}

// Advance moves the cursor to the next token.
func (t *Tokenizer) Advance() {
	t.advance()
}

// AdvanceTwice is a convenience for the small fixed lookahead the
// translator needs past a terminal it has already matched.
func (t *Tokenizer) AdvanceTwice() {
	t.advance()
	t.advance()
}

func (t *Tokenizer) advance() {
	if t.err != nil {
		t.hasCurrent = false
		return
	}

	for {
		if !t.skipCommentsAndBlankLines() {
			t.hasCurrent = false
			return
		}

		line := t.lines[t.curLine]
		rest := line[t.offset:]

		trimmed := strings.TrimLeft(rest, " \t\r")
		lead := len(rest) - len(trimmed)

		kind, lexeme, ok := classify(trimmed)
		if !ok {
			// No recognizable token starting here; move past one
			// byte and keep searching the rest of the line.
			if len(trimmed) == 0 {
				t.curLine++
				t.offset = 0
				continue
			}
			t.offset += lead + 1
			continue
		}

		pos := token.Position{Line: t.curLine + 1, Offset: t.offset + lead + 1}
		t.offset += lead + len(lexeme)
		t.current = buildToken(kind, lexeme, pos)
		t.hasCurrent = true
		return
	}
}

// skipCommentsAndBlankLines advances the cursor past whitespace, line
// comments, and block comments until either a line with real content
// is reached or the input is exhausted. Returns false at end-of-input.
func (t *Tokenizer) skipCommentsAndBlankLines() bool {
	for {
		if t.curLine >= len(t.lines) {
			return false
		}

		line := t.lines[t.curLine]
		if t.offset > len(line) {
			t.curLine++
			t.offset = 0
			continue
		}
		rest := line[t.offset:]

		if lineCommentRegex.MatchString(rest) {
			t.curLine++
			t.offset = 0
			continue
		}

		if blockCommentStart.MatchString(rest) {
			if !t.skipBlockComment() {
				// Unterminated block comment: fall through to silent
				// end-of-input, per spec.md §4.3. The translator will
				// raise a ParseError at its next structural
				// expectation instead of the tokenizer erroring here.
				return false
			}
			continue
		}

		if strings.TrimSpace(rest) == "" {
			t.curLine++
			t.offset = 0
			continue
		}

		return true
	}
}

// skipBlockComment consumes lines until one contains "*/", leaving the
// cursor just past it. Returns false if EOF is reached first.
func (t *Tokenizer) skipBlockComment() bool {
	for t.curLine < len(t.lines) {
		line := t.lines[t.curLine]
		idx := strings.Index(line[t.offset:], "*/")
		if idx >= 0 {
			t.offset = t.offset + idx + 2
			return true
		}
		t.curLine++
		t.offset = 0
	}
	return false
}

// classify applies the precedence order symbol -> int -> string ->
// keyword -> identifier to the text starting at s.
func classify(s string) (token.Kind, string, bool) {
	if m := symbolRegex.FindString(s); m != "" {
		return token.SymbolKind, m, true
	}
	if m := intRegex.FindString(s); m != "" {
		return token.IntConstKind, m, true
	}
	if m := stringRegex.FindString(s); m != "" {
		return token.StringConstKind, m, true
	}
	if m := identifierRegex.FindString(s); m != "" {
		return token.IdentifierKind, m, true
	}
	return token.Invalid, "", false
}

func buildToken(kind token.Kind, lexeme string, pos token.Position) token.Token {
	t := token.Token{Kind: kind, Position: pos}
	switch kind {
	case token.SymbolKind:
		t.Symbol = lexeme[0]
	case token.IntConstKind:
		n, _ := strconv.Atoi(lexeme)
		t.IntVal = n
	case token.StringConstKind:
		t.StrVal = lexeme[1 : len(lexeme)-1]
	case token.IdentifierKind:
		if kw, ok := token.Keywords[lexeme]; ok {
			t.Kind = token.KeywordKind
			t.Keyword = kw
		} else {
			t.Ident = lexeme
		}
	}
	return t
}
