package device

import (
	"errors"
	"io"
	"iter"
	"log"
	"math"

	"github.com/ezrec/vm16/vm"
)

const (
	DISK_SECTOR_SIZE = 512
	DISK_VERSION     = 1
)

// DiskState is the command a disk is executing, and selects its packet:
//
//	identify: in status, sectors, sector size, device index
//	read:     out address, LBA
//	write:    out address, LBA
//	error:    in error code
//
//go:generate go tool stringer -linecomment -type=DiskState
type DiskState uint16

const (
	DISK_NONE     = DiskState(0) // none
	DISK_IDENTIFY = DiskState(1) // identify
	DISK_READ     = DiskState(2) // read
	DISK_WRITE    = DiskState(3) // write
	DISK_ERROR    = DiskState(4) // error
)

// Error codes reported after a failed transfer.
const (
	DISK_ERROR_BAD_SECTOR  = 0
	DISK_ERROR_BAD_ADDRESS = 1 // Sector buffer does not fit in memory.
	DISK_ERROR_IO          = 2 // The image could not be read or written.
)

// Disk is a block device over a disk image. A program writes a DiskState to
// the port to start a command, then transfers the command's packet words.
// Reads and writes move one whole sector between the image and memory.
type Disk struct {
	Verbose bool
	Port    uint16
	Image   io.ReadWriteSeeker // Nil for an empty drive.

	sectors   uint16
	machine   *vm.Machine
	state     DiskState
	packet    [4]uint16
	offset    int
	filled    bool
	errorCode uint16
}

func (disk *Disk) Defines() iter.Seq2[string, string] {
	return defines(map[string]int{
		"PORT_DISK":              int(disk.Port),
		"DISK_SECTOR_SIZE":       DISK_SECTOR_SIZE,
		"DISK_IDENTIFY":          int(DISK_IDENTIFY),
		"DISK_READ":              int(DISK_READ),
		"DISK_WRITE":             int(DISK_WRITE),
		"DISK_ERROR_BAD_SECTOR":  DISK_ERROR_BAD_SECTOR,
		"DISK_ERROR_BAD_ADDRESS": DISK_ERROR_BAD_ADDRESS,
		"DISK_ERROR_IO":          DISK_ERROR_IO,
	})
}

// Sectors returns the number of whole sectors in the image.
func (disk *Disk) Sectors() uint16 {
	return disk.sectors
}

// State returns the current command.
func (disk *Disk) State() DiskState {
	return disk.state
}

func (disk *Disk) Attach(m *vm.Machine) (err error) {
	if disk.Image != nil {
		var size int64
		size, err = disk.Image.Seek(0, io.SeekEnd)
		if err != nil {
			err = errors.Join(ErrDiskImage, err)
			return
		}
		disk.sectors = uint16(min(size/DISK_SECTOR_SIZE, math.MaxUint16))
	}

	disk.machine = m

	err = m.HandleInput(disk.Port, disk.receive)
	if err != nil {
		return
	}
	err = m.HandleOutput(disk.Port, disk.send)
	return
}

func (disk *Disk) Reset() {
	disk.state = DISK_NONE
	disk.offset = 0
	disk.filled = false
}

// Close closes the image, if it can be closed.
func (disk *Disk) Close() (err error) {
	closer, ok := disk.Image.(io.Closer)
	if ok {
		err = closer.Close()
	}
	return
}

func (disk *Disk) fail(code uint16) {
	disk.errorCode = code
	disk.state = DISK_ERROR
}

func (disk *Disk) receive() (value uint16) {
	switch disk.state {
	case DISK_IDENTIFY:
		if !disk.filled {
			disk.packet = [4]uint16{
				(DISK_VERSION << 8) | 0x80,
				disk.sectors,
				DISK_SECTOR_SIZE,
				0,
			}
			disk.offset = 0
			disk.filled = true
		}
		if disk.offset >= len(disk.packet) {
			return
		}
		value = disk.packet[disk.offset]
		disk.offset++
	case DISK_ERROR:
		disk.state = DISK_NONE
		value = disk.errorCode
	}
	return
}

func (disk *Disk) send(value uint16) {
	switch disk.state {
	case DISK_READ, DISK_WRITE:
		disk.packet[disk.offset] = value
		disk.offset++
		if disk.offset >= 2 {
			disk.transfer(disk.packet[0], disk.packet[1])
		}
	default:
		disk.state = DiskState(value)
		disk.offset = 0
		disk.filled = false
	}
}

func (disk *Disk) transfer(addr uint16, lba uint16) {
	write := disk.state == DISK_WRITE

	if disk.Verbose {
		log.Printf("disk: %v address=%d lba=%d", disk.state, addr, lba)
	}

	if lba >= disk.sectors {
		disk.fail(DISK_ERROR_BAD_SECTOR)
		return
	}
	if int(addr)+DISK_SECTOR_SIZE > vm.MEMORY_SIZE {
		disk.fail(DISK_ERROR_BAD_ADDRESS)
		return
	}

	_, err := disk.Image.Seek(int64(lba)*DISK_SECTOR_SIZE, io.SeekStart)
	if err != nil {
		disk.fail(DISK_ERROR_IO)
		return
	}

	var sector [DISK_SECTOR_SIZE]byte
	mem := disk.machine.Memory()
	if write {
		err = mem.Read(addr, sector[:])
		if err == nil {
			_, err = disk.Image.Write(sector[:])
		}
	} else {
		_, err = io.ReadFull(disk.Image, sector[:])
		if err == nil {
			err = mem.Write(addr, sector[:])
		}
	}
	if err != nil {
		disk.fail(DISK_ERROR_IO)
		return
	}

	disk.state = DISK_NONE
}
