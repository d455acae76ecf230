// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator assembles a complete vm16 system: the machine, the
// standard devices, and optionally the listing of the loaded program.
package emulator

import (
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"maps"
	"os"
	"strconv"

	"github.com/ezrec/vm16/asm"
	"github.com/ezrec/vm16/config"
	"github.com/ezrec/vm16/device"
	"github.com/ezrec/vm16/internal"
	"github.com/ezrec/vm16/vm"
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": strconv.Itoa(vm.MEMORY_SIZE),
	"STACK_TOP":   strconv.Itoa(int(vm.STACK_TOP)),
}

// Emulator state. Machine + devices + program listing.
type Emulator struct {
	Verbose     bool         // If set, enables verbose logging.
	*vm.Machine              // Reference to the machine.
	Program     *asm.Program // Listing of the loaded program, if known.

	Debugger    device.Debugger
	Motherboard device.Motherboard
	Keyboard    device.Keyboard
	Console     device.Console
	Controller  device.Controller // Attached if enabled in the config.
	Disk        device.Disk       // Attached if the config names an image.

	config *config.Config
}

// NewEmulator creates an emulator wired as cfg describes; nil uses
// config.Default.
func NewEmulator(cfg *config.Config) (emu *Emulator, err error) {
	if cfg == nil {
		cfg = config.Default()
	}

	emu = &Emulator{
		Machine: vm.NewMachine(),
		config:  cfg,
	}

	emu.Debugger.Port = device.PORT_DEBUG
	emu.Motherboard.RandomPort = device.PORT_RANDOM
	emu.Motherboard.TimerPort = device.PORT_TIMER0
	emu.Keyboard.Port = cfg.KeyboardPort
	emu.Console.Port = cfg.ConsolePort
	emu.Controller.Port = cfg.ControllerPort
	emu.Disk.Port = cfg.Disk.Port

	if cfg.Disk.Image != "" {
		var file *os.File
		file, err = os.OpenFile(cfg.Disk.Image, os.O_RDWR, 0)
		if err != nil {
			err = errors.Join(device.ErrDiskImage, err)
			emu = nil
			return
		}
		emu.Disk.Image = file
	}

	err = emu.Machine.Attach(emu.devices()...)
	if err != nil {
		emu.Close()
		emu = nil
		return
	}

	return
}

func (emu *Emulator) devices() (devices []vm.Device) {
	devices = []vm.Device{&emu.Debugger, &emu.Motherboard, &emu.Keyboard, &emu.Console}
	if emu.config.Controller {
		devices = append(devices, &emu.Controller)
	}
	if emu.Disk.Image != nil {
		devices = append(devices, &emu.Disk)
	}
	return
}

// Config returns the configuration the emulator was built with.
func (emu *Emulator) Config() *config.Config {
	return emu.config
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{
		maps.All(_emulator_defines),
		emu.Debugger.Defines(),
		emu.Motherboard.Defines(),
		emu.Keyboard.Defines(),
		emu.Console.Defines(),
	}
	if emu.config.Controller {
		seqs = append(seqs, emu.Controller.Defines())
	}
	if emu.Disk.Image != nil {
		seqs = append(seqs, emu.Disk.Defines())
	}
	return internal.IterSeq2Concat(seqs...)
}

// Predefine installs every define into an assembler.
func (emu *Emulator) Predefine(assembler *asm.Assembler) (err error) {
	for name, text := range internal.IterSeq2Sorted(emu.Defines()) {
		var value int16
		value, err = asm.ParseValue(text)
		if err != nil {
			return
		}
		if emu.Verbose {
			log.Printf("predefine %v = %v", name, text)
		}
		assembler.Predefine(name, value)
	}
	return
}

// Assemble builds a program with the emulator's defines and loads it.
// Includes resolve against the configured include root, or the directory
// of filename.
func (emu *Emulator) Assemble(filename string, r io.Reader) (err error) {
	root, name, err := asm.SourceRoot(emu.config.Include, filename)
	if err != nil {
		return
	}

	assembler := &asm.Assembler{
		Verbose: emu.Verbose,
		Include: root,
	}

	err = emu.Predefine(assembler)
	if err != nil {
		return
	}

	image, prog, err := assembler.Assemble(name, r)
	if err != nil {
		return
	}

	err = emu.Load(image)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Load resets the machine and devices, and copies image to address 0.
// Any attached program listing is dropped.
func (emu *Emulator) Load(image []byte) (err error) {
	emu.Machine.Reset()
	emu.Program = nil
	err = emu.Machine.Memory().Load(image)
	return
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	err = emu.Disk.Close()
	return
}

// LineNo returns the source line of the instruction at addr, or 0.
func (emu *Emulator) LineNo(addr uint16) int {
	if emu.Program == nil {
		return 0
	}
	return emu.Program.LineAt(addr)
}

// Step executes a single instruction.
func (emu *Emulator) Step() (err error) {
	emu.Machine.Verbose = emu.Verbose

	addr := emu.Machine.IP
	err = emu.Machine.Step()
	if err != nil {
		err = &ErrRuntime{Address: addr, LineNo: emu.LineNo(addr), Err: err}
	}
	return
}

// Run executes up to budget instructions, stopping early when the machine
// traps or ctx is done. It returns the number of instructions executed.
func (emu *Emulator) Run(ctx context.Context, budget int) (count int, err error) {
	for count < budget {
		if emu.Machine.Trapped() {
			return
		}
		if count%1024 == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}
		err = emu.Step()
		if err != nil {
			return
		}
		count++
	}
	return
}

// Disassemble decodes count instructions at the instruction pointer.
func (emu *Emulator) Disassemble(count int) []vm.Line {
	return vm.Disassemble(emu.Machine.Memory(), emu.Machine.IP, count)
}
