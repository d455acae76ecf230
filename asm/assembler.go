// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"io"
	"io/fs"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ezrec/vm16/isa"
)

// Assembler converts assembly source into a Program.
type Assembler struct {
	Verbose bool  // If set, logs every parsed instruction.
	Include fs.FS // Source of #include files.

	predefine map[string]int16
}

// Predefine installs a numeric macro visible to every parsed source.
func (asm *Assembler) Predefine(name string, value int16) {
	if asm.predefine == nil {
		asm.predefine = map[string]int16{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// Parse lexes, preprocesses and parses a source file. The returned Program
// still needs Build to resolve labels.
func (asm *Assembler) Parse(filename string, r io.Reader) (prog *Program, err error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return
	}

	tokens, err := Lex(filename, string(source))
	if err != nil {
		return
	}

	pp := &Preprocessor{
		Verbose: asm.Verbose,
		Include: asm.Include,
	}
	for name, value := range asm.predefine {
		pp.Define(name, Token{
			Kind:  TOKEN_NUMBER,
			Text:  strconv.Itoa(int(value)),
			Value: value,
		})
	}

	tokens, err = pp.Process(filename, tokens)
	if err != nil {
		return
	}

	p := &parser{
		verbose: asm.Verbose,
		tokens:  tokens,
		prog:    &Program{},
	}

	err = p.parse()
	if err != nil {
		return
	}

	prog = p.prog
	return
}

// Assemble parses and builds a source file into a binary image.
func (asm *Assembler) Assemble(filename string, r io.Reader) (image []byte, prog *Program, err error) {
	prog, err = asm.Parse(filename, r)
	if err != nil {
		return
	}

	image, err = prog.Build()
	return
}

type parser struct {
	verbose bool
	tokens  TokenList
	pos     int
	prog    *Program
}

func (p *parser) peek() Token {
	return p.tokens.At(p.pos)
}

func (p *parser) next() (tok Token) {
	tok = p.tokens.At(p.pos)
	p.pos++
	return
}

func (p *parser) errorAt(tok Token, err error) error {
	return &ErrSyntax{Filename: tok.Filename, LineNo: tok.LineNo, Err: err}
}

// expect consumes a token of the given kind, or fails with err.
func (p *parser) expect(kind TokenKind, fail error) (tok Token, err error) {
	tok = p.peek()
	if tok.Kind != kind {
		err = p.errorAt(tok, fail)
		return
	}
	p.pos++
	return
}

func isDirective(tok Token) bool {
	if tok.Kind != TOKEN_WORD {
		return false
	}
	switch strings.ToLower(tok.Text) {
	case "db", "dw", "rb":
		return true
	}
	return false
}

func (p *parser) parse() (err error) {
	for {
		tok := p.peek()

		switch {
		case tok.Kind == TOKEN_EOF:
			return
		case tok.Kind == TOKEN_LABEL:
			p.next()
			err = p.prog.addLabel(tok)
			if err != nil {
				err = p.errorAt(tok, err)
				return
			}
		case tok.Kind == TOKEN_KEYWORD:
			err = p.instruction()
		case isDirective(tok):
			err = p.data()
		default:
			err = p.errorAt(tok, ErrUnexpected(tok.String()))
		}

		if err != nil {
			return
		}
	}
}

func (p *parser) instruction() (err error) {
	tok := p.next()
	op, _ := isa.LookupOpcode(tok.Text)

	inst := &Instruction{
		Filename: tok.Filename,
		LineNo:   tok.LineNo,
		Opcode:   op,
	}

	operands := []*Operand{&inst.Left, &inst.Right}
	for n := range op.Operands() {
		if n > 0 {
			_, err = p.expect(TOKEN_COMMA, ErrCommaMissing)
			if err != nil {
				return
			}
		}
		*operands[n], err = p.operand()
		if err != nil {
			return
		}
	}

	if p.verbose {
		log.Printf("%v:%d: %v", inst.Filename, inst.LineNo, inst)
	}

	p.prog.Instructions = append(p.prog.Instructions, inst)
	return
}

// bytePrefix returns true if the next word is a `byte` prefix, that is, an
// operand follows it on the same line. Otherwise it is a label reference.
func (p *parser) bytePrefix() bool {
	tok := p.peek()
	if tok.Kind != TOKEN_WORD || !strings.EqualFold(tok.Text, "byte") {
		return false
	}

	next := p.tokens.At(p.pos + 1)
	if next.Filename != tok.Filename || next.LineNo != tok.LineNo {
		return false
	}
	switch next.Kind {
	case TOKEN_WORD, TOKEN_OPEN_BRACKET, TOKEN_NUMBER, TOKEN_STRING,
		TOKEN_OPEN_PAREN, TOKEN_MINUS, TOKEN_TILDE:
		return true
	}
	return false
}

func (p *parser) operand() (op Operand, err error) {
	tok := p.peek()
	if p.bytePrefix() {
		p.next()
		op.Byte = true
		tok = p.peek()
	}

	if tok.Kind == TOKEN_OPEN_BRACKET {
		p.next()
		op.Pointer = true
		tok = p.peek()
	}

	switch tok.Kind {
	case TOKEN_EOF, TOKEN_COMMA, TOKEN_CLOSE_BRACKET, TOKEN_LABEL, TOKEN_KEYWORD:
		err = p.errorAt(tok, ErrOperandMissing)
		return
	case TOKEN_WORD:
		p.next()
		kind, ok := isa.LookupRegister(tok.Text)
		if ok {
			op.Kind = kind
			break
		}
		if follow := p.peek(); follow.IsOperator() || follow.IsNegative() {
			err = p.errorAt(tok, ErrNotImplemented)
			return
		}
		op.Kind = isa.KIND_IMM16
		op.Label = tok.Text
	case TOKEN_STRING:
		p.next()
		var value int16
		value, err = stringValue(tok.Text)
		if err != nil {
			err = p.errorAt(tok, err)
			return
		}
		op.Kind = isa.KIND_IMM16
		op.Value = uint16(value)
	default:
		var value int16
		value, err = p.bitwise()
		if err != nil {
			return
		}
		op.Kind = isa.KIND_IMM16
		op.Value = uint16(value)
	}

	if op.Pointer {
		_, err = p.expect(TOKEN_CLOSE_BRACKET, ErrBracketMissing)
	}

	return
}

// encode437 converts text to code page 437 bytes.
func encode437(text string) (data []byte, err error) {
	for _, r := range text {
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			err = ErrStringEncode
			return
		}
		data = append(data, b)
	}
	return
}

// stringValue folds a 1 or 2 byte string into a value: two bytes are
// little-endian, one byte is sign extended.
func stringValue(text string) (value int16, err error) {
	data, err := encode437(text)
	if err != nil {
		return
	}

	switch len(data) {
	case 1:
		value = int16(int8(data[0]))
	case 2:
		value = int16(uint16(data[0]) | uint16(data[1])<<8)
	default:
		err = ErrStringOperand
	}
	return
}

func (p *parser) data() (err error) {
	tok := p.next()
	directive := strings.ToLower(tok.Text)

	inst := &Instruction{
		Filename:  tok.Filename,
		LineNo:    tok.LineNo,
		Directive: directive,
	}

	if directive == "rb" {
		var count int16
		count, err = p.bitwise()
		if err != nil {
			return
		}
		if count < 0 {
			err = p.errorAt(tok, ErrDataRange)
			return
		}
		inst.Data = make([]byte, count)
	} else {
		for {
			item := p.peek()
			switch item.Kind {
			case TOKEN_STRING:
				p.next()
				var bytes []byte
				bytes, err = encode437(item.Text)
				if err != nil {
					err = p.errorAt(item, err)
					return
				}
				inst.Data = append(inst.Data, bytes...)
			case TOKEN_NUMBER, TOKEN_OPEN_PAREN, TOKEN_TILDE, TOKEN_MINUS:
				var value int16
				value, err = p.bitwise()
				if err != nil {
					return
				}
				if directive == "db" {
					if value < 0 || value > 255 {
						err = p.errorAt(item, ErrDataRange)
						return
					}
					inst.Data = append(inst.Data, byte(value))
				} else {
					inst.Data = append(inst.Data, byte(value), byte(uint16(value)>>8))
				}
			default:
				if len(inst.Data) > 0 || item.Kind == TOKEN_COMMA {
					err = p.errorAt(item, ErrExpression)
					return
				}
			}

			if p.peek().Kind != TOKEN_COMMA {
				break
			}
			p.next()
		}
	}

	if len(inst.Data) == 0 {
		err = p.errorAt(tok, ErrDataEmpty)
		return
	}

	if p.verbose {
		log.Printf("%v:%d: %v", inst.Filename, inst.LineNo, inst)
	}

	p.prog.Instructions = append(p.prog.Instructions, inst)
	return
}
