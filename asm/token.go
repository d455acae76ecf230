package asm

import (
	"strconv"
	"strings"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TOKEN_EOF = TokenKind(iota)
	TOKEN_WORD
	TOKEN_KEYWORD
	TOKEN_LABEL
	TOKEN_NUMBER
	TOKEN_STRING
	TOKEN_COMMA
	TOKEN_OPEN_BRACKET
	TOKEN_CLOSE_BRACKET
	TOKEN_OPEN_PAREN
	TOKEN_CLOSE_PAREN
	TOKEN_COLON
	TOKEN_DOT
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_TILDE
	TOKEN_AND
	TOKEN_OR
	TOKEN_XOR
	TOKEN_HASH
)

var delimKind = map[string]TokenKind{
	",": TOKEN_COMMA,
	"[": TOKEN_OPEN_BRACKET,
	"]": TOKEN_CLOSE_BRACKET,
	"(": TOKEN_OPEN_PAREN,
	")": TOKEN_CLOSE_PAREN,
	":": TOKEN_COLON,
	".": TOKEN_DOT,
	"+": TOKEN_PLUS,
	"-": TOKEN_MINUS,
	"*": TOKEN_STAR,
	"/": TOKEN_SLASH,
	"%": TOKEN_PERCENT,
	"~": TOKEN_TILDE,
	"&": TOKEN_AND,
	"|": TOKEN_OR,
	"^": TOKEN_XOR,
	"#": TOKEN_HASH,
}

var kindName = [...]string{
	TOKEN_EOF:     "end of file",
	TOKEN_WORD:    "word",
	TOKEN_KEYWORD: "keyword",
	TOKEN_LABEL:   "label",
	TOKEN_NUMBER:  "number",
	TOKEN_STRING:  "string",
}

func (kind TokenKind) String() string {
	if int(kind) < len(kindName) {
		return kindName[kind]
	}
	for text, k := range delimKind {
		if k == kind {
			return "'" + text + "'"
		}
	}
	return "token(" + strconv.Itoa(int(kind)) + ")"
}

// Token is a single lexical element of the source.
type Token struct {
	Kind     TokenKind
	Filename string
	LineNo   int
	Text     string // Source text; decoded contents for strings.
	Value    int16  // Value of a number.
}

// IsNegative returns true for a number folded with its leading '-'. In an
// expression it subtracts from what precedes it.
func (tok Token) IsNegative() bool {
	return tok.Kind == TOKEN_NUMBER && strings.HasPrefix(tok.Text, "-")
}

// IsOperator returns true for the arithmetic and bitwise operators.
func (tok Token) IsOperator() bool {
	switch tok.Kind {
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT,
		TOKEN_TILDE, TOKEN_AND, TOKEN_OR, TOKEN_XOR:
		return true
	}
	return false
}

func (tok Token) String() string {
	switch tok.Kind {
	case TOKEN_EOF:
		return tok.Kind.String()
	case TOKEN_STRING:
		return strconv.Quote(tok.Text)
	}
	return "'" + tok.Text + "'"
}

// TokenList is a token sequence with unbounded lookahead.
type TokenList []Token

// At returns the token at index n, or an end of file token if n is out of
// range.
func (tl TokenList) At(n int) (tok Token) {
	if n >= 0 && n < len(tl) {
		return tl[n]
	}

	tok.Kind = TOKEN_EOF
	if len(tl) > 0 {
		last := tl[len(tl)-1]
		tok.Filename = last.Filename
		tok.LineNo = last.LineNo
	}
	return
}
