package vm

// MEMORY_SIZE is the size of the flat address space.
const MEMORY_SIZE = 32000

// Memory is the byte addressable address space of the machine.
type Memory struct {
	data [MEMORY_SIZE]byte
}

func (mem *Memory) check(addr int, size int) (err error) {
	if addr < 0 || addr+size > MEMORY_SIZE {
		err = ErrMemory{Address: addr}
	}
	return
}

// Get reads a byte.
func (mem *Memory) Get(addr uint16) (value byte, err error) {
	err = mem.check(int(addr), 1)
	if err != nil {
		return
	}
	value = mem.data[addr]
	return
}

// Set writes a byte.
func (mem *Memory) Set(addr uint16, value byte) (err error) {
	err = mem.check(int(addr), 1)
	if err != nil {
		return
	}
	mem.data[addr] = value
	return
}

// Word reads a little-endian 16-bit value.
func (mem *Memory) Word(addr uint16) (value uint16, err error) {
	err = mem.check(int(addr), 2)
	if err != nil {
		return
	}
	value = uint16(mem.data[addr]) | uint16(mem.data[int(addr)+1])<<8
	return
}

// SetWord writes a little-endian 16-bit value.
func (mem *Memory) SetWord(addr uint16, value uint16) (err error) {
	err = mem.check(int(addr), 2)
	if err != nil {
		return
	}
	mem.data[addr] = byte(value)
	mem.data[int(addr)+1] = byte(value >> 8)
	return
}

// Read copies len(buf) bytes starting at addr into buf.
func (mem *Memory) Read(addr uint16, buf []byte) (err error) {
	err = mem.check(int(addr), len(buf))
	if err != nil {
		return
	}
	copy(buf, mem.data[addr:])
	return
}

// Write copies buf into memory starting at addr.
func (mem *Memory) Write(addr uint16, buf []byte) (err error) {
	err = mem.check(int(addr), len(buf))
	if err != nil {
		return
	}
	copy(mem.data[addr:], buf)
	return
}

// Clear zeroes all of memory.
func (mem *Memory) Clear() {
	clear(mem.data[:])
}

// Load clears memory and copies image to address 0.
func (mem *Memory) Load(image []byte) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrImageSize
		return
	}
	mem.Clear()
	copy(mem.data[:], image)
	return
}
