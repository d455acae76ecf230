// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/vm16/config"
	"github.com/ezrec/vm16/emulator"
	"github.com/ezrec/vm16/translate"
)

var f = translate.From

var ErrSpeed = errors.New(f("speed must be slow, medium, fast or unlimited"))

const KEY_INTERRUPT = 0x03 // Ctrl-C, as seen on a raw terminal.

// crlf expands newlines for a terminal in raw mode.
type crlf struct {
	w io.Writer
}

func (c crlf) Write(data []byte) (n int, err error) {
	for _, b := range data {
		if b == '\n' {
			_, err = c.w.Write([]byte{'\r', '\n'})
		} else {
			_, err = c.w.Write([]byte{b})
		}
		if err != nil {
			return
		}
		n++
	}
	return
}

// budget returns the instructions per frame for a speed name.
func budget(cfg *config.Config, speed string) (steps int, err error) {
	switch speed {
	case "slow":
		steps = cfg.Slow
	case "medium":
		steps = cfg.Medium
	case "fast":
		steps = cfg.Fast
	case "unlimited":
		steps = math.MaxInt
	default:
		err = ErrSpeed
	}
	steps = max(steps, 1)
	return
}

// load assembles source files and copies binaries directly.
func load(emu *emulator.Emulator, filename string) (err error) {
	switch filepath.Ext(filename) {
	case ".asm", ".s":
		var inf *os.File
		inf, err = os.Open(filename)
		if err != nil {
			return
		}
		defer inf.Close()
		err = emu.Assemble(filename, inf)
	default:
		var image []byte
		image, err = os.ReadFile(filename)
		if err != nil {
			return
		}
		err = emu.Load(image)
	}
	return
}

// keyboard feeds the emulated keyboard from stdin until it closes.
func keyboard(emu *emulator.Emulator, in io.Reader, raw bool, cancel context.CancelFunc) {
	r := bufio.NewReader(in)
	for {
		key, _, err := r.ReadRune()
		if err != nil {
			return
		}
		if raw && key == KEY_INTERRUPT {
			cancel()
			return
		}
		emu.Keyboard.Press(key)
	}
}

type options struct {
	configFile string
	disk       string
	speed      string
	steps      int
	verbose    bool
}

func run(opts *options, program string) (err error) {
	cfg := config.Default()
	if len(opts.configFile) != 0 {
		cfg, err = config.Load(opts.configFile, nil)
		if err != nil {
			return
		}
	}
	if len(opts.disk) != 0 {
		cfg.Disk.Image = opts.disk
	}
	if len(program) == 0 {
		program = cfg.DefaultFile
	}

	frameSteps, err := budget(cfg, opts.speed)
	if err != nil {
		return
	}

	emu, err := emulator.NewEmulator(cfg)
	if err != nil {
		return
	}
	defer emu.Close()
	emu.Verbose = opts.verbose

	err = load(emu, program)
	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.steps > 0 {
		emu.Console.Output = os.Stdout
		var count int
		count, err = emu.Run(ctx, opts.steps)
		fmt.Fprintln(os.Stderr, f("%d instructions", count))
		fmt.Fprintln(os.Stderr, emu.String())
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fd := int(os.Stdin.Fd())
	raw := term.IsTerminal(fd)
	emu.Console.Output = os.Stdout
	if raw {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer term.Restore(fd, state)
		emu.Console.Output = crlf{w: os.Stdout}
	}
	go keyboard(emu, os.Stdin, raw, cancel)

	frame := time.NewTicker(time.Second / time.Duration(cfg.Framerate))
	defer frame.Stop()

	for !emu.Trapped() {
		_, err = emu.Run(ctx, frameSteps)
		if err != nil {
			break
		}
		if frameSteps == math.MaxInt {
			continue
		}
		select {
		case <-ctx.Done():
		case <-frame.C:
		}
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if opts.verbose {
		log.Printf("%v", emu.String())
	}
	return
}

func main() {
	var opts options

	flag.StringVar(&opts.configFile, "c", "", "Starlark configuration file")
	flag.StringVar(&opts.disk, "d", "", "Disk image, overrides the configuration")
	flag.StringVar(&opts.speed, "speed", "medium", "slow, medium, fast or unlimited")
	flag.IntVar(&opts.steps, "steps", 0, "Run at most N instructions headless, then dump registers")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	err := run(&opts, flag.Arg(0))
	if err != nil {
		fmt.Println(f("Error: %v", err))
		os.Exit(1)
	}
}
