package asm

import (
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/encoding/charmap"
)

// Rules are tried in order; the Open* and Unknown rules only match what the
// complete forms before them could not.
var lexRules = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "OpenComment", Pattern: `/\*`},
	{Name: "String", Pattern: `"(?:\\(?s:.)|[^"\\])*"`},
	{Name: "OpenString", Pattern: `"`},
	{Name: "Number", Pattern: `0[xX][0-9A-Za-z_]*|[0-9][0-9A-Za-z_]*`},
	{Name: "Word", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Delim", Pattern: `[,\[\]():.+\-*/%~&|^#]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Unknown", Pattern: `(?s:.)`},
})

var (
	symbols        = lexRules.Symbols()
	lexComment     = symbols["Comment"]
	lexOpenComment = symbols["OpenComment"]
	lexString      = symbols["String"]
	lexOpenString  = symbols["OpenString"]
	lexNumber      = symbols["Number"]
	lexWord        = symbols["Word"]
	lexDelim       = symbols["Delim"]
	lexWhitespace  = symbols["Whitespace"]
	lexUnknown     = symbols["Unknown"]
)

var escapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'"':  '"',
	'\\': '\\',
	'0':  0,
}

// unescape decodes the body of a string literal. `\xHH` names a code page
// 437 byte. Unknown escapes stand for the escaped character.
func unescape(body string) (text string, err error) {
	var sb strings.Builder

	for n := 0; n < len(body); n++ {
		c := body[n]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}

		n++
		c = body[n]
		if c == 'x' {
			if n+3 > len(body) {
				err = ErrEscape
				return
			}
			var value uint64
			value, err = strconv.ParseUint(body[n+1:n+3], 16, 8)
			if err != nil {
				err = ErrEscape
				return
			}
			sb.WriteRune(charmap.CodePage437.DecodeByte(byte(value)))
			n += 2
			continue
		}

		esc, ok := escapes[c]
		if !ok {
			esc = c
		}
		sb.WriteByte(esc)
	}

	text = sb.String()
	return
}

// ParseValue parses a predefined value: any base Go accepts, either a signed
// 16-bit value or an unsigned 16-bit pattern.
func ParseValue(text string) (value int16, err error) {
	n, perr := strconv.ParseInt(text, 0, 32)
	if perr != nil || n < math.MinInt16 || n > math.MaxUint16 {
		err = ErrNumber(text)
		return
	}
	value = int16(n)
	return
}

// parseNumber validates a numeric literal. Decimal literals are signed,
// hexadecimal literals are a 16-bit pattern.
func parseNumber(text string) (value int16, err error) {
	if len(text) > 2 && (text[:2] == "0x" || text[:2] == "0X") {
		u, perr := strconv.ParseUint(text[2:], 16, 16)
		if perr != nil {
			err = ErrNumber(text)
			return
		}
		value = int16(u)
		return
	}

	v, perr := strconv.ParseInt(text, 10, 16)
	if perr != nil {
		err = ErrNumber(text)
		return
	}
	value = int16(v)
	return
}

func isDecimal(text string) bool {
	return !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X")
}

// Lex converts source text into tokens. A '-' written directly against a
// decimal number becomes part of the number unless it follows something
// that ends an operand (a number, ')' or ']').
func Lex(filename string, source string) (tokens TokenList, err error) {
	lex, err := lexRules.LexString(filename, source)
	if err != nil {
		return
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return
	}

	minusEnd := -1
	for _, rt := range raw {
		line := rt.Pos.Line
		fail := func(e error) {
			err = &ErrSyntax{Filename: filename, LineNo: line, Err: e}
		}

		tok := Token{
			Filename: filename,
			LineNo:   line,
			Text:     rt.Value,
		}

		switch rt.Type {
		case lexer.EOF, lexComment, lexWhitespace:
			continue
		case lexOpenComment:
			fail(ErrCommentOpen)
			return nil, err
		case lexOpenString:
			fail(ErrStringOpen)
			return nil, err
		case lexUnknown:
			fail(ErrCharacter(rt.Value))
			return nil, err
		case lexString:
			var uerr error
			tok.Kind = TOKEN_STRING
			tok.Text, uerr = unescape(rt.Value[1 : len(rt.Value)-1])
			if uerr != nil {
				fail(uerr)
				return nil, err
			}
		case lexNumber:
			tok.Kind = TOKEN_NUMBER
			if minusEnd == rt.Pos.Offset && isDecimal(rt.Value) {
				switch tokens.At(len(tokens) - 2).Kind {
				case TOKEN_NUMBER, TOKEN_CLOSE_PAREN, TOKEN_CLOSE_BRACKET:
				default:
					tokens = tokens[:len(tokens)-1]
					tok.Text = "-" + rt.Value
				}
			}
			var nerr error
			tok.Value, nerr = parseNumber(tok.Text)
			if nerr != nil {
				fail(nerr)
				return nil, err
			}
		case lexWord:
			tok.Kind = TOKEN_WORD
		case lexDelim:
			tok.Kind = delimKind[rt.Value]
		default:
			fail(ErrCharacter(rt.Value))
			return nil, err
		}

		minusEnd = -1
		if tok.Kind == TOKEN_MINUS {
			minusEnd = rt.Pos.Offset + 1
		}

		tokens = append(tokens, tok)
	}

	return
}
