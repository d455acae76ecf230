package asm

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/vm16/isa"
)

// MEMORY_SIZE is the largest image the machine can load.
const MEMORY_SIZE = 32000

// Operand is a parsed instruction operand.
type Operand struct {
	isa.Spec
	Value uint16 // Immediate payload.
	Label string // Label reference, resolved into Value by Build.
}

func (op Operand) String() (text string) {
	switch {
	case op.Label != "":
		text = op.Label
	case op.Kind.IsImmediate():
		text = strconv.Itoa(int(int16(op.Value)))
	default:
		text = op.Kind.String()
	}
	if op.Pointer {
		text = "[" + text + "]"
	}
	if op.Byte {
		text = "byte " + text
	}
	return
}

// Instruction is an opcode with its operands, or a block of data.
type Instruction struct {
	Filename string
	LineNo   int
	Address  uint16 // Assigned by Build.

	Opcode isa.Opcode
	Left   Operand
	Right  Operand

	Directive string // "db", "dw" or "rb" for data.
	Data      []byte
}

// IsData returns true for a data directive.
func (inst *Instruction) IsData() bool {
	return inst.Directive != ""
}

func (inst *Instruction) header() isa.Header {
	return isa.Header{Opcode: inst.Opcode, Left: inst.Left.Spec, Right: inst.Right.Spec}
}

// Len returns the encoded size in bytes.
func (inst *Instruction) Len() int {
	if inst.IsData() {
		return len(inst.Data)
	}
	hdr := inst.header()
	return hdr.Len() + hdr.PayloadLen()
}

// Append encodes the instruction onto dst.
func (inst *Instruction) Append(dst []byte) []byte {
	if inst.IsData() {
		return append(dst, inst.Data...)
	}
	dst = inst.header().Append(dst)
	n := inst.Opcode.Operands()
	if n >= 1 {
		dst = isa.AppendPayload(dst, inst.Left.Kind, inst.Left.Value)
	}
	if n >= 2 {
		dst = isa.AppendPayload(dst, inst.Right.Kind, inst.Right.Value)
	}
	return dst
}

func (inst *Instruction) String() string {
	if inst.IsData() {
		return fmt.Sprintf("%v %d bytes", inst.Directive, len(inst.Data))
	}
	switch inst.Opcode.Operands() {
	case 0:
		return inst.Opcode.String()
	case 1:
		return inst.Opcode.String() + " " + inst.Left.String()
	}
	return inst.Opcode.String() + " " + inst.Left.String() + ", " + inst.Right.String()
}

// Label is a named program location.
type Label struct {
	Name     string
	Filename string
	LineNo   int
	Index    int    // Index of the instruction following the label.
	Address  uint16 // Assigned by Build.
}

// Program is the parsed form of an assembly source.
type Program struct {
	Instructions []*Instruction
	Labels       map[string]*Label
}

func (prog *Program) addLabel(tok Token) (err error) {
	if prog.Labels == nil {
		prog.Labels = map[string]*Label{}
	}
	if _, ok := prog.Labels[tok.Text]; ok {
		err = ErrLabelDuplicate
		return
	}
	prog.Labels[tok.Text] = &Label{
		Name:     tok.Text,
		Filename: tok.Filename,
		LineNo:   tok.LineNo,
		Index:    len(prog.Instructions),
	}
	return
}

// Address returns the resolved address of a label.
func (prog *Program) Address(name string) (addr uint16, ok bool) {
	label, ok := prog.Labels[name]
	if ok {
		addr = label.Address
	}
	return
}

// Build assigns addresses to every instruction and label, resolves label
// references, and returns the binary image.
func (prog *Program) Build() (image []byte, err error) {
	labels := slices.SortedFunc(maps.Values(prog.Labels), func(a, b *Label) int {
		return a.Index - b.Index
	})

	offset := 0
	for n, inst := range prog.Instructions {
		for len(labels) > 0 && labels[0].Index == n {
			labels[0].Address = uint16(offset)
			labels = labels[1:]
		}
		inst.Address = uint16(offset)
		offset += inst.Len()
		if offset > MEMORY_SIZE {
			err = &ErrSyntax{Filename: inst.Filename, LineNo: inst.LineNo, Err: ErrProgramSize}
			return
		}
	}
	for _, label := range labels {
		label.Address = uint16(offset)
	}

	image = make([]byte, 0, offset)
	for _, inst := range prog.Instructions {
		for _, op := range []*Operand{&inst.Left, &inst.Right} {
			if op.Label == "" {
				continue
			}
			addr, ok := prog.Address(op.Label)
			if !ok {
				err = &ErrSyntax{Filename: inst.Filename, LineNo: inst.LineNo, Err: ErrLabelMissing(op.Label)}
				image = nil
				return
			}
			op.Value = addr
		}
		image = inst.Append(image)
	}

	return
}

// InstructionAt returns the instruction covering addr, after Build.
func (prog *Program) InstructionAt(addr uint16) *Instruction {
	n, found := slices.BinarySearchFunc(prog.Instructions, addr, func(inst *Instruction, addr uint16) int {
		return int(inst.Address) - int(addr)
	})
	if !found {
		n--
	}
	if n < 0 {
		return nil
	}
	inst := prog.Instructions[n]
	if int(addr) >= int(inst.Address)+inst.Len() {
		return nil
	}
	return inst
}

// LineAt returns the source line of the instruction covering addr, or 0.
func (prog *Program) LineAt(addr uint16) int {
	inst := prog.InstructionAt(addr)
	if inst == nil {
		return 0
	}
	return inst.LineNo
}

// Listing writes an address, bytes and source location line for every
// instruction, after Build.
func (prog *Program) Listing(w io.Writer) (err error) {
	names := map[int][]string{}
	for _, label := range prog.Labels {
		names[label.Index] = append(names[label.Index], label.Name)
	}

	writeLabels := func(index int, addr uint16) (err error) {
		labels := names[index]
		slices.Sort(labels)
		for _, name := range labels {
			_, err = fmt.Fprintf(w, "%04X  %v:\n", addr, name)
			if err != nil {
				return
			}
		}
		return
	}

	end := 0
	for n, inst := range prog.Instructions {
		err = writeLabels(n, inst.Address)
		if err != nil {
			return
		}
		end = int(inst.Address) + inst.Len()

		code := inst.Append(nil)
		var hex []string
		for _, b := range code[:min(len(code), 8)] {
			hex = append(hex, fmt.Sprintf("%02X", b))
		}
		if len(code) > 8 {
			hex = append(hex, "..")
		}

		_, err = fmt.Fprintf(w, "%04X  %-26v %v:%d  %v\n",
			inst.Address, strings.Join(hex, " "), inst.Filename, inst.LineNo, inst)
		if err != nil {
			return
		}
	}

	err = writeLabels(len(prog.Instructions), uint16(end))
	return
}
