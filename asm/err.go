package asm

import (
	"errors"

	"github.com/ezrec/vm16/translate"
)

var f = translate.From

var (
	// Lexer errors
	ErrCommentOpen = errors.New(f("unterminated block comment"))
	ErrStringOpen  = errors.New(f("unterminated string"))
	ErrEscape      = errors.New(f("bad escape sequence"))

	// Preprocessor errors
	ErrDefineSyntax    = errors.New(f("#define syntax"))
	ErrDefineBody      = errors.New(f("#define body must be constant"))
	ErrDefineDuplicate = errors.New(f("#define duplicated"))
	ErrIncludeSyntax   = errors.New(f("#include syntax"))
	ErrIncludeMissing  = errors.New(f("#include file missing"))
	ErrIncludeDepth    = errors.New(f("#include nested too deeply"))

	// Parser errors
	ErrOperandMissing = errors.New(f("operand missing"))
	ErrCommaMissing   = errors.New(f("',' expected"))
	ErrBracketMissing = errors.New(f("']' expected"))
	ErrParenMissing   = errors.New(f("')' expected"))
	ErrExpression     = errors.New(f("expression expected"))
	ErrLabelDuplicate = errors.New(f("label duplicated"))
	ErrStringOperand  = errors.New(f("string operand must be 1 or 2 bytes"))
	ErrStringEncode   = errors.New(f("string not representable in code page 437"))
	ErrDataRange      = errors.New(f("data value out of range"))
	ErrDataEmpty      = errors.New(f("data directive empty"))
	ErrDivideByZero   = errors.New(f("division by zero"))
	ErrNotImplemented = errors.New(f("labels in expressions not implemented"))
	ErrProgramSize    = errors.New(f("program exceeds memory"))
)

// ErrCharacter is an unexpected source character.
type ErrCharacter string

func (err ErrCharacter) Error() string {
	return f("unexpected character %q", string(err))
}

// ErrNumber is a malformed or out of range numeric literal.
type ErrNumber string

func (err ErrNumber) Error() string {
	return f("'%v' is not a 16-bit number", string(err))
}

// ErrDirective is an unknown preprocessor directive.
type ErrDirective string

func (err ErrDirective) Error() string {
	return f("unknown directive #%v", string(err))
}

// ErrUnexpected is a token the parser cannot use at its position.
type ErrUnexpected string

func (err ErrUnexpected) Error() string {
	return f("unexpected %v", string(err))
}

type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

// ErrSyntax locates an assembly error in the source.
type ErrSyntax struct {
	Filename string
	LineNo   int
	Err      error
}

func (err *ErrSyntax) Error() string {
	return f("%v:%d: %v", err.Filename, err.LineNo, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
