package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/vm16/config"
	"github.com/ezrec/vm16/device"
	"github.com/ezrec/vm16/vm"
)

func newEmulator(t *testing.T, cfg *config.Config) *Emulator {
	emu, err := NewEmulator(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { emu.Close() })
	return emu
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, nil)

	assert.False(emu.Verbose)
	assert.Nil(emu.Program)
	assert.Equal(vm.STACK_TOP, emu.SP)
	assert.Equal(config.Default(), emu.Config())

	defines := maps.Collect(emu.Defines())
	assert.Equal("32000", defines["MEMORY_SIZE"])
	assert.Equal("31999", defines["STACK_TOP"])
	assert.Equal("1", defines["PORT_KEYBOARD"])
	assert.Equal("2", defines["PORT_CONSOLE"])
	assert.Equal("3", defines["PORT_DEBUG"])
	assert.Equal("9", defines["PORT_RANDOM"])
	assert.Equal("13", defines["PORT_TIMER3"])
	assert.NotContains(defines, "PORT_CONTROLLER")
	assert.NotContains(defines, "PORT_DISK")
}

const hello = `
	set R0, message
loop:
	set R1, byte [R0]
	cmp R1, 0
	je done
	out PORT_CONSOLE, R1
	inc R0
	jmp loop
done:
	out PORT_DEBUG, 1
message:
	db "Hi!\n", 0
`

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, nil)
	output := &bytes.Buffer{}
	emu.Console.Output = output

	err := emu.Assemble("hello.asm", strings.NewReader(hello))
	require.NoError(t, err)
	require.NotNil(t, emu.Program)

	assert.Equal(2, emu.LineNo(emu.IP))
	lines := emu.Disassemble(1)
	require.Len(t, lines, 1)
	assert.Equal("SET R0, 31", lines[0].Text)

	count, err := emu.Run(context.Background(), 1000)
	assert.NoError(err)
	assert.True(emu.Trapped())
	// set, then 6 per character, then the final compare, branch and trap.
	assert.Equal(1+4*6+4, count)
	assert.Equal("Hi!\n", output.String())

	// A trapped machine makes no progress.
	count, err = emu.Run(context.Background(), 1000)
	assert.NoError(err)
	assert.Equal(0, count)
}

func TestEmulatorBudget(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, nil)
	err := emu.Assemble("loop.asm", strings.NewReader("spin:\n\tjmp spin\n"))
	require.NoError(t, err)

	count, err := emu.Run(context.Background(), 100)
	assert.NoError(err)
	assert.Equal(100, count)
	assert.Equal(100, emu.Ticks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	count, err = emu.Run(ctx, 100)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, count)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, nil)
	source := "set R0, 1\nset R1, 0\n\ndiv R0, R1\n"
	err := emu.Assemble("div.asm", strings.NewReader(source))
	require.NoError(t, err)

	_, err = emu.Run(context.Background(), 10)
	var runtime *ErrRuntime
	require.True(t, errors.As(err, &runtime))
	assert.Equal(uint16(8), runtime.Address)
	assert.Equal(4, runtime.LineNo)
	assert.ErrorIs(err, vm.ErrDivideByZero)
	assert.Equal("0x0008 line 4: division by zero", err.Error())

	// Raw images have no listing.
	err = emu.Load([]byte{0xf8})
	require.NoError(t, err)
	assert.Nil(emu.Program)

	err = emu.Step()
	require.True(t, errors.As(err, &runtime))
	assert.Equal(0, runtime.LineNo)
	var invalid vm.ErrInvalidOpcode
	assert.True(errors.As(err, &invalid))
	assert.Equal(uint16(0), invalid.Address)
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, nil)
	emu.Keyboard.Type("q")
	emu.Register[5] = 7

	err := emu.Load([]byte{0x98, 0x32, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(uint16(0), emu.Register[5])

	// Load resets devices, so the queued key is gone.
	err = emu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0), emu.Register[1])
	assert.NotZero(emu.Flags & vm.FLAG_ZERO)

	err = emu.Load(make([]byte, vm.MEMORY_SIZE+1))
	assert.ErrorIs(err, vm.ErrImageSize)
}

func TestEmulatorDevices(t *testing.T) {
	assert := assert.New(t)

	image := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(image, make([]byte, 4*device.DISK_SECTOR_SIZE), 0o644))

	cfg := config.Default()
	cfg.Controller = true
	cfg.Disk.Image = image

	emu := newEmulator(t, cfg)

	defines := maps.Collect(emu.Defines())
	assert.Equal("100", defines["PORT_CONTROLLER"])
	assert.Equal("200", defines["PORT_DISK"])
	assert.Equal("512", defines["DISK_SECTOR_SIZE"])

	source := `
	in R0, PORT_CONTROLLER
	out PORT_DISK, DISK_IDENTIFY
	in R1, PORT_DISK
	in R2, PORT_DISK
	out PORT_DEBUG, 1
`
	err := emu.Assemble("devices.asm", strings.NewReader(source))
	require.NoError(t, err)

	emu.Controller.Press(device.BUTTON_A)
	_, err = emu.Run(context.Background(), 100)
	assert.NoError(err)
	assert.Equal(uint16(0x80|0x10), emu.Register[0])
	assert.Equal(uint16(0x0180), emu.Register[1])
	assert.Equal(uint16(4), emu.Register[2])
}

func TestEmulatorConfigErrors(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.Disk.Image = filepath.Join(t.TempDir(), "missing.img")
	emu, err := NewEmulator(cfg)
	assert.Nil(emu)
	assert.ErrorIs(err, device.ErrDiskImage)

	cfg = config.Default()
	cfg.KeyboardPort = cfg.ConsolePort
	emu, err = NewEmulator(cfg)
	assert.Nil(emu)
	var inUse vm.ErrPortInUse
	if assert.True(errors.As(err, &inUse)) {
		assert.Equal(cfg.ConsolePort, inUse.Port)
		assert.Equal(vm.DIRECTION_INPUT, inUse.Direction)
	}
}

func TestEmulatorInclude(t *testing.T) {
	assert := assert.New(t)

	dir := filepath.Join(t.TempDir(), "sub")
	require.NoError(t, os.Mkdir(dir, 0o755))
	main := filepath.Join(dir, "main.asm")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.inc"), []byte("#define GREETING 65\n"), 0o644))

	source := "#include \"lib.inc\"\n\tout PORT_CONSOLE, GREETING\n\tout PORT_DEBUG, 1\n"

	emu := newEmulator(t, nil)
	output := &bytes.Buffer{}
	emu.Console.Output = output

	err := emu.Assemble(main, strings.NewReader(source))
	require.NoError(t, err)
	_, err = emu.Run(context.Background(), 10)
	assert.NoError(err)
	assert.Equal("A", output.String())

	// A configured include root containing the program keeps paths relative to it.
	cfg := config.Default()
	cfg.Include = filepath.Dir(dir)
	emu = newEmulator(t, cfg)
	err = emu.Assemble(main, strings.NewReader(source))
	assert.NoError(err)
	assert.Equal(2, emu.LineNo(0))
}
