package asm

import (
	"errors"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/ezrec/vm16/isa"
)

// MAX_INCLUDE_DEPTH bounds #include nesting, which also stops include cycles.
const MAX_INCLUDE_DEPTH = 16

// Preprocessor rewrites a lexed token stream: it marks keywords and labels,
// expands #define macros and splices in #include files.
type Preprocessor struct {
	Verbose bool  // If set, logs macro definitions and includes.
	Include fs.FS // Source of #include files. Nil disables #include.

	macros map[string]TokenList
	depth  int
}

// Define installs a macro. Its body is stored as given.
func (pp *Preprocessor) Define(name string, body ...Token) {
	if pp.macros == nil {
		pp.macros = map[string]TokenList{}
	}
	pp.macros[name] = body
}

// Macro returns the body of a defined macro.
func (pp *Preprocessor) Macro(name string) (body TokenList, ok bool) {
	body, ok = pp.macros[name]
	return
}

func isKeyword(word string) bool {
	_, ok := isa.LookupOpcode(word)
	return ok
}

// expand appends a macro body, retagged with the location of its use.
func expand(out TokenList, body TokenList, use Token) TokenList {
	for _, tok := range body {
		tok.Filename = use.Filename
		tok.LineNo = use.LineNo
		out = append(out, tok)
	}
	return out
}

// Process rewrites the tokens of filename.
func (pp *Preprocessor) Process(filename string, tokens TokenList) (out TokenList, err error) {
	for n := 0; n < len(tokens); n++ {
		tok := tokens[n]

		switch tok.Kind {
		case TOKEN_WORD:
			if isKeyword(tok.Text) {
				tok.Kind = TOKEN_KEYWORD
				tok.Text = strings.ToLower(tok.Text)
				out = append(out, tok)
				continue
			}
			body, ok := pp.macros[tok.Text]
			if ok {
				out = expand(out, body, tok)
				continue
			}
			out = append(out, tok)
		case TOKEN_COLON:
			last := len(out) - 1
			if last >= 0 && out[last].Kind == TOKEN_WORD && tokens.At(n-1).Kind == TOKEN_WORD {
				out[last].Kind = TOKEN_LABEL
				continue
			}
			out = append(out, tok)
		case TOKEN_HASH:
			var consumed int
			var spliced TokenList
			consumed, spliced, err = pp.directive(filename, tokens[n:])
			if err != nil {
				return
			}
			out = append(out, spliced...)
			n += consumed - 1
		default:
			out = append(out, tok)
		}
	}

	return
}

// directive handles a '#' directive at the start of tokens, returning the
// number of tokens it consumed and any tokens to splice into the output.
func (pp *Preprocessor) directive(filename string, tokens TokenList) (consumed int, spliced TokenList, err error) {
	hash := tokens[0]
	name := tokens.At(1)

	fail := func(e error) {
		err = &ErrSyntax{Filename: hash.Filename, LineNo: hash.LineNo, Err: e}
	}

	if name.Kind != TOKEN_WORD || name.LineNo != hash.LineNo {
		fail(ErrDirective(""))
		return
	}

	// Everything on the directive's line belongs to it.
	consumed = 2
	for tokens.At(consumed).Kind != TOKEN_EOF && tokens.At(consumed).LineNo == hash.LineNo {
		consumed++
	}
	args := tokens[2:consumed]

	switch strings.ToLower(name.Text) {
	case "define":
		err = pp.define(args)
		if err != nil {
			fail(err)
		}
	case "include":
		if len(args) != 1 || args[0].Kind != TOKEN_STRING {
			fail(ErrIncludeSyntax)
			return
		}
		spliced, err = pp.include(filename, args[0].Text)
		var esyn *ErrSyntax
		if err != nil && !errors.As(err, &esyn) {
			fail(err)
		}
	default:
		fail(ErrDirective(name.Text))
	}

	return
}

func (pp *Preprocessor) define(args TokenList) (err error) {
	if len(args) == 0 || args[0].Kind != TOKEN_WORD || isKeyword(args[0].Text) {
		err = ErrDefineSyntax
		return
	}

	name := args[0].Text
	if _, ok := pp.macros[name]; ok {
		err = ErrDefineDuplicate
		return
	}

	var body TokenList
	for _, tok := range args[1:] {
		switch {
		case tok.Kind == TOKEN_NUMBER, tok.IsOperator(),
			tok.Kind == TOKEN_OPEN_PAREN, tok.Kind == TOKEN_CLOSE_PAREN:
			body = append(body, tok)
		case tok.Kind == TOKEN_WORD:
			inner, ok := pp.macros[tok.Text]
			if !ok {
				err = ErrDefineBody
				return
			}
			body = expand(body, inner, tok)
		default:
			err = ErrDefineBody
			return
		}
	}

	if pp.Verbose {
		log.Printf("#define %v (%d tokens)", name, len(body))
	}

	pp.Define(name, body...)
	return
}

func (pp *Preprocessor) include(filename string, name string) (out TokenList, err error) {
	if pp.depth >= MAX_INCLUDE_DEPTH {
		err = ErrIncludeDepth
		return
	}

	if pp.Include == nil {
		err = ErrIncludeMissing
		return
	}

	target := name
	if !path.IsAbs(name) {
		target = path.Join(path.Dir(filename), name)
	}
	target = strings.TrimPrefix(path.Clean(target), "/")

	source, err := fs.ReadFile(pp.Include, target)
	if err != nil {
		err = errors.Join(ErrIncludeMissing, err)
		return
	}

	if pp.Verbose {
		log.Printf("#include %v", target)
	}

	tokens, err := Lex(target, string(source))
	if err != nil {
		return
	}

	pp.depth++
	defer func() { pp.depth-- }()

	out, err = pp.Process(target, tokens)
	return
}
