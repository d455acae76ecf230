package asm

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preprocess(t *testing.T, pp *Preprocessor, filename, source string) (TokenList, error) {
	tokens, err := Lex(filename, source)
	require.NoError(t, err)
	return pp.Process(filename, tokens)
}

func TestPreprocessor(t *testing.T) {
	assert := assert.New(t)

	pp := &Preprocessor{}
	tokens, err := preprocess(t, pp, "main.asm", "#define TEN 10\n#define TWENTY TEN * 2\n\nloop: SET R0, TWENTY\n")
	assert.NoError(err)

	assert.Equal([]TokenKind{
		TOKEN_LABEL, TOKEN_KEYWORD, TOKEN_WORD, TOKEN_COMMA,
		TOKEN_NUMBER, TOKEN_STAR, TOKEN_NUMBER,
	}, kinds(tokens))

	assert.Equal("loop", tokens[0].Text)
	assert.Equal("set", tokens[1].Text)
	for _, tok := range tokens[4:] {
		assert.Equal(4, tok.LineNo)
	}

	body, ok := pp.Macro("TWENTY")
	assert.True(ok)
	assert.Equal(3, len(body))
}

func TestPreprocessorInclude(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"lib/defs.inc": {Data: []byte("#include \"more.inc\"\n#define X 3\n")},
		"lib/more.inc": {Data: []byte("#define Y 4\nret\n")},
		"loop.inc":     {Data: []byte("#include \"loop.inc\"\n")},
	}

	pp := &Preprocessor{Include: fsys}
	tokens, err := preprocess(t, pp, "main.asm", "#include \"lib/defs.inc\"\npush X\npush Y\n")
	assert.NoError(err)

	assert.Equal([]TokenKind{
		TOKEN_KEYWORD,
		TOKEN_KEYWORD, TOKEN_NUMBER,
		TOKEN_KEYWORD, TOKEN_NUMBER,
	}, kinds(tokens))
	assert.Equal("lib/more.inc", tokens[0].Filename)
	assert.Equal(2, tokens[0].LineNo)
	assert.Equal("main.asm", tokens[2].Filename)
	assert.Equal(int16(3), tokens[2].Value)
	assert.Equal(int16(4), tokens[4].Value)

	_, err = preprocess(t, &Preprocessor{Include: fsys}, "main.asm", "ret\n#include \"loop.inc\"\n")
	assert.ErrorIs(err, ErrIncludeDepth)
}

func TestPreprocessorErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		source string
		lineNo int
		err    error
	}{
		{"ret\n#include \"missing.inc\"", 2, ErrIncludeMissing},
		{"#include missing", 1, ErrIncludeSyntax},
		{"\n\n#pragma once", 3, ErrDirective("pragma")},
		{"#\ndefine X 1", 1, ErrDirective("")},
		{"#define\nX 1", 1, ErrDefineSyntax},
		{"#define set 1", 1, ErrDefineSyntax},
		{"#define X 1\n#define X 2", 2, ErrDefineDuplicate},
		{"#define X R0", 1, ErrDefineBody},
		{"#define X \"a\"", 1, ErrDefineBody},
	}

	for _, entry := range table {
		pp := &Preprocessor{Include: fstest.MapFS{}}
		_, err := preprocess(t, pp, "main.asm", entry.source)
		assert.ErrorIs(err, entry.err, entry.source)
		var esyn *ErrSyntax
		if assert.True(errors.As(err, &esyn), entry.source) {
			assert.Equal(entry.lineNo, esyn.LineNo, entry.source)
		}
	}
}
