package device

import (
	"io"
	"iter"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ezrec/vm16/vm"
)

// Console is a byte stream terminal. Writing the port prints the low byte,
// decoded from code page 437; reading it returns the next input byte, or 0
// once the input is exhausted.
type Console struct {
	Port   uint16
	Input  io.Reader
	Output io.Writer
}

func (con *Console) Defines() iter.Seq2[string, string] {
	return defines(map[string]int{"PORT_CONSOLE": int(con.Port)})
}

func (con *Console) send(value uint16) {
	if con.Output == nil {
		return
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], charmap.CodePage437.DecodeByte(byte(value)))
	con.Output.Write(buf[:n])
}

func (con *Console) receive() (value uint16) {
	if con.Input == nil {
		return
	}
	var one [1]byte
	_, err := io.ReadFull(con.Input, one[:])
	if err != nil {
		return
	}
	value = uint16(one[0])
	return
}

func (con *Console) Attach(m *vm.Machine) (err error) {
	err = m.HandleOutput(con.Port, con.send)
	if err != nil {
		return
	}
	err = m.HandleInput(con.Port, con.receive)
	return
}

// Reset is a no-op; a stream cannot be rewound.
func (con *Console) Reset() {
}
