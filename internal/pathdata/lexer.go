package pathdata

import (
	"fmt"
	"unicode/utf8"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// TokenKind distinguishes command letters from numeric literals.
type TokenKind int

const (
	CommandToken TokenKind = iota
	NumberToken
)

// Token is a single lexeme of path data.
type Token struct {
	Kind  TokenKind
	Cmd   byte    // command letter, CommandToken only
	Value float64 // parsed value, NumberToken only
	Text  string  // literal as written in the input
	Pos   int     // byte offset in the input
}

// SyntaxError reports a character that is neither a separator, a command
// letter, nor the start of a number.
type SyntaxError struct {
	Pos  int
	Char rune
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pathdata: unexpected %q at position %d", e.Char, e.Pos)
}

// Tokenize splits path data into command letters and numbers. Whitespace and
// commas separate tokens. The large-arc and sweep flags of an arc are a single
// 0 or 1 and need no separator, so "a5 5 0 01 10 0" has seven operands.
// Unrecognized characters are skipped; the first one is returned as a
// *SyntaxError alongside the tokens that could be read.
func Tokenize(d string) ([]Token, error) {
	b := []byte(d)
	var (
		toks     []Token
		firstErr error
		cmd      byte
		operands int // numbers read since the last command letter
	)

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case isSeparator(c):
			i++
		case isLetter(c):
			toks = append(toks, Token{Kind: CommandToken, Cmd: c, Text: d[i : i+1], Pos: i})
			cmd, operands = c, 0
			i++
		case isArcFlagSlot(cmd, operands) && (c == '0' || c == '1'):
			toks = append(toks, Token{Kind: NumberToken, Value: float64(c - '0'), Text: d[i : i+1], Pos: i})
			operands++
			i++
		default:
			v, n := pstrconv.ParseFloat(b[i:])
			if n == 0 {
				r, size := utf8.DecodeRune(b[i:])
				if firstErr == nil {
					firstErr = &SyntaxError{Pos: i, Char: r}
				}
				i += size
				continue
			}
			toks = append(toks, Token{Kind: NumberToken, Value: v, Text: d[i : i+n], Pos: i})
			operands++
			i += n
		}
	}

	return toks, firstErr
}

// isArcFlagSlot reports whether the next operand of cmd is an arc flag.
func isArcFlagSlot(cmd byte, operands int) bool {
	if cmd != 'A' && cmd != 'a' {
		return false
	}
	slot := operands % 7
	return slot == 3 || slot == 4
}

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
