package vm

import (
	"fmt"
)

// Line is one disassembled instruction or undecodable byte.
type Line struct {
	Address uint16
	Bytes   []byte
	Text    string
}

func (line Line) String() string {
	return fmt.Sprintf("%04X  % -15X %v", line.Address, line.Bytes, line.Text)
}

// Disassemble decodes up to count instructions starting at addr without
// touching machine state. Once decoding fails the rest of the window is
// shown as raw bytes.
func Disassemble(mem *Memory, addr uint16, count int) (lines []Line) {
	var inst Instruction
	raw := false

	for len(lines) < count && int(addr) < MEMORY_SIZE {
		if !raw {
			next, err := mem.Decode(addr, &inst)
			if err == nil {
				code := make([]byte, inst.Size)
				_ = mem.Read(addr, code)
				lines = append(lines, Line{Address: addr, Bytes: code, Text: inst.String()})
				addr = next
				continue
			}
			raw = true
		}

		b, _ := mem.Get(addr)
		lines = append(lines, Line{
			Address: addr,
			Bytes:   []byte{b},
			Text:    fmt.Sprintf("db 0x%02X", b),
		})
		addr++
	}

	return
}
