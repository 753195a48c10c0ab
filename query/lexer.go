package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokWord
	tokSymbol // comparison operator such as = or >=
	tokString
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokColon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "word"
	case tokSymbol:
		return "operator"
	case tokString:
		return "string"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokComma:
		return "','"
	case tokColon:
		return "':'"
	default:
		return "unknown"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// keyword reports whether t is the given case-insensitive keyword.
func (t token) keyword(kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

// ParseError reports malformed query text.
type ParseError struct {
	// Offset is the byte offset of the error in the input.
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

var punctuation = map[rune]tokenKind{
	'(': tokLParen, ')': tokRParen,
	'[': tokLBracket, ']': tokRBracket,
	'{': tokLBrace, '}': tokRBrace,
	',': tokComma, ':': tokColon,
}

type lexer struct {
	input string
	pos   int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' || r == '@' || r == '$'
}

func isSymbolRune(r rune) bool {
	return r == '=' || r == '!' || r == '<' || r == '>' || r == '~'
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	if k, ok := punctuation[r]; ok {
		l.pos += size
		return token{kind: k, text: string(r), pos: start}, nil
	}

	switch {
	case r == '\'':
		return l.quoted()
	case isSymbolRune(r):
		for l.pos < len(l.input) {
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if !isSymbolRune(r) {
				break
			}
			l.pos += size
		}
		return token{kind: tokSymbol, text: l.input[start:l.pos], pos: start}, nil
	case isWordRune(r):
		for l.pos < len(l.input) {
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if !isWordRune(r) {
				break
			}
			l.pos += size
		}
		return token{kind: tokWord, text: l.input[start:l.pos], pos: start}, nil
	}
	return token{}, &ParseError{Offset: start, Msg: fmt.Sprintf("unexpected character %q", r)}
}

// quoted scans a single-quoted string. \' and \\ are the only escapes.
func (l *lexer) quoted() (token, error) {
	start := l.pos
	l.pos++ // opening quote

	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '\'':
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case '\\':
			if l.pos+1 < len(l.input) && (l.input[l.pos+1] == '\'' || l.input[l.pos+1] == '\\') {
				b.WriteByte(l.input[l.pos+1])
				l.pos += 2
				continue
			}
			b.WriteByte(c)
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, &ParseError{Offset: start, Msg: "unterminated string"}
}
