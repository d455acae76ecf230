// Package config reads the vm16 machine configuration, a Starlark file of
// global assignments:
//
//	framerate = 60
//	slow = 600          # instructions per second
//	medium = 60000
//	fast = 1200000
//	default_file = "out.bin"
//	keyboard_port = port(1)
//	console_port = port(2)
//	controller = True
//	controller_port = port(100)
//	disk = {"image": "disk.img", "port": port(200)}
//	include = "lib"
//
// Every global is optional.
package config

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/vm16/device"
	"github.com/ezrec/vm16/translate"
)

var f = translate.From

var (
	ErrFramerate = errors.New(f("framerate cannot be 0"))
)

// ErrConfigKey is an unusable value for a configuration global.
type ErrConfigKey struct {
	Key string
	Err error
}

func (err *ErrConfigKey) Error() string {
	return f("config %v: %v", err.Key, err.Err)
}

func (err *ErrConfigKey) Unwrap() error {
	return err.Err
}

// ErrType is a value of the wrong Starlark type.
type ErrType string

func (err ErrType) Error() string {
	return f("expected %v", string(err))
}

// ErrPort is a port number outside 0..65535.
type ErrPort int

func (err ErrPort) Error() string {
	return f("port %d out of range", int(err))
}

// Disk configures the hard drive.
type Disk struct {
	Image string // Disk image path; empty for no drive.
	Port  uint16
}

// Config is the machine configuration. Speeds are in instructions per frame.
type Config struct {
	Framerate      int
	Slow           int
	Medium         int
	Fast           int
	DefaultFile    string
	KeyboardPort   uint16
	ConsolePort    uint16
	Controller     bool
	ControllerPort uint16
	Disk           Disk
	Include        string // Assembler include root.
}

const (
	DEFAULT_FRAMERATE = 60
	DEFAULT_SLOW      = 600     // per second
	DEFAULT_MEDIUM    = 60000   // per second
	DEFAULT_FAST      = 1200000 // per second
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Framerate:      DEFAULT_FRAMERATE,
		Slow:           DEFAULT_SLOW / DEFAULT_FRAMERATE,
		Medium:         DEFAULT_MEDIUM / DEFAULT_FRAMERATE,
		Fast:           DEFAULT_FAST / DEFAULT_FRAMERATE,
		DefaultFile:    "out.bin",
		KeyboardPort:   device.PORT_KEYBOARD,
		ConsolePort:    device.PORT_CONSOLE,
		ControllerPort: device.PORT_CONTROLLER,
		Disk:           Disk{Port: device.PORT_DISK},
	}
}

func portBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var n int
	err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &n)
	if err != nil {
		return
	}
	if n < 0 || n > 0xffff {
		err = ErrPort(n)
		return
	}
	value = starlark.MakeInt(n)
	return
}

// Load executes a configuration file. src is as for starlark.ExecFile: nil
// to read filename, or a string, []byte or io.Reader.
func Load(filename string, src any) (cfg *Config, err error) {
	thread := &starlark.Thread{Name: filename}
	opts := &syntax.FileOptions{}
	pred := starlark.StringDict{
		"port": starlark.NewBuiltin("port", portBuiltin),
	}

	globals, err := starlark.ExecFileOptions(opts, thread, filename, src, pred)
	if err != nil {
		return
	}

	cfg = Default()
	r := reader{globals: globals}

	framerate := r.int("framerate", DEFAULT_FRAMERATE)
	slow := r.int("slow", DEFAULT_SLOW)
	medium := r.int("medium", DEFAULT_MEDIUM)
	fast := r.int("fast", DEFAULT_FAST)
	cfg.DefaultFile = r.string("default_file", cfg.DefaultFile)
	cfg.KeyboardPort = r.port("keyboard_port", cfg.KeyboardPort)
	cfg.ConsolePort = r.port("console_port", cfg.ConsolePort)
	cfg.Controller = r.bool("controller", cfg.Controller)
	cfg.ControllerPort = r.port("controller_port", cfg.ControllerPort)
	cfg.Include = r.string("include", cfg.Include)
	cfg.Disk = r.disk("disk", cfg.Disk)

	if r.err != nil {
		err = r.err
		cfg = nil
		return
	}

	if framerate <= 0 {
		err = &ErrConfigKey{Key: "framerate", Err: ErrFramerate}
		cfg = nil
		return
	}

	cfg.Framerate = framerate
	cfg.Slow = slow / framerate
	cfg.Medium = medium / framerate
	cfg.Fast = fast / framerate
	return
}

// reader extracts typed globals, keeping the first error.
type reader struct {
	globals starlark.StringDict
	err     error
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = &ErrConfigKey{Key: key, Err: err}
	}
}

func (r *reader) int(key string, def int) int {
	value, ok := r.globals[key]
	if !ok {
		return def
	}
	return r.toInt(key, value, def)
}

func (r *reader) toInt(key string, value starlark.Value, def int) int {
	iv, ok := value.(starlark.Int)
	if !ok {
		r.fail(key, ErrType("int"))
		return def
	}
	n, ok := iv.Int64()
	if !ok {
		r.fail(key, ErrType("int"))
		return def
	}
	return int(n)
}

func (r *reader) port(key string, def uint16) uint16 {
	value, ok := r.globals[key]
	if !ok {
		return def
	}
	return r.toPort(key, value, def)
}

func (r *reader) toPort(key string, value starlark.Value, def uint16) uint16 {
	n := r.toInt(key, value, int(def))
	if n < 0 || n > 0xffff {
		r.fail(key, ErrPort(n))
		return def
	}
	return uint16(n)
}

func (r *reader) string(key string, def string) string {
	value, ok := r.globals[key]
	if !ok {
		return def
	}
	s, ok := starlark.AsString(value)
	if !ok {
		r.fail(key, ErrType("string"))
		return def
	}
	return s
}

func (r *reader) bool(key string, def bool) bool {
	value, ok := r.globals[key]
	if !ok {
		return def
	}
	b, ok := value.(starlark.Bool)
	if !ok {
		r.fail(key, ErrType("bool"))
		return def
	}
	return bool(b)
}

func (r *reader) disk(key string, def Disk) (disk Disk) {
	disk = def
	value, ok := r.globals[key]
	if !ok {
		return
	}
	dict, ok := value.(*starlark.Dict)
	if !ok {
		r.fail(key, ErrType("dict"))
		return
	}

	image, found, err := dict.Get(starlark.String("image"))
	if err == nil && found {
		s, ok := starlark.AsString(image)
		if !ok {
			r.fail(key+".image", ErrType("string"))
			return
		}
		disk.Image = s
	}

	port, found, err := dict.Get(starlark.String("port"))
	if err == nil && found {
		disk.Port = r.toPort(key+".port", port, def.Port)
	}

	return
}
