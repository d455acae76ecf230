// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/vm16/asm"
	"github.com/ezrec/vm16/translate"
)

var f = translate.From

// defineFlags collects repeated -D NAME=VALUE options.
type defineFlags map[string]int16

func (defs defineFlags) String() string {
	var parts []string
	for name, value := range defs {
		parts = append(parts, name+"="+strconv.Itoa(int(value)))
	}
	return strings.Join(parts, ",")
}

func (defs defineFlags) Set(text string) (err error) {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		err = errors.New(f("expected NAME=VALUE, got %q", text))
		return
	}
	n, err := asm.ParseValue(value)
	if err != nil {
		return
	}
	defs[name] = n
	return
}

func assemble(asmr *asm.Assembler, include, input, output, listing string) (size int, err error) {
	root, name, err := asm.SourceRoot(include, input)
	if err != nil {
		return
	}
	asmr.Include = root

	inf, err := os.Open(input)
	if err != nil {
		return
	}
	defer inf.Close()

	image, prog, err := asmr.Assemble(name, inf)
	if err != nil {
		return
	}

	err = os.WriteFile(output, image, 0o644)
	if err != nil {
		return
	}

	if len(listing) != 0 {
		var ouf *os.File
		ouf, err = os.Create(listing)
		if err != nil {
			return
		}
		defer ouf.Close()
		err = prog.Listing(ouf)
		if err != nil {
			return
		}
	}

	size = len(image)
	return
}

func main() {
	var include string
	var listing string
	var verbose bool
	defines := defineFlags{}

	flag.StringVar(&include, "I", "", "Include root (default: the input's directory)")
	flag.Var(defines, "D", "Predefine NAME=VALUE (repeatable)")
	flag.StringVar(&listing, "l", "", "Listing file to write")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatalf("%v: usage: %v [options] input output", os.Args[0], os.Args[0])
	}

	asmr := &asm.Assembler{
		Verbose: verbose,
	}
	for name, value := range defines {
		asmr.Predefine(name, value)
	}

	size, err := assemble(asmr, include, flag.Arg(0), flag.Arg(1), listing)
	if err != nil {
		fmt.Println(f("Error: %v", err))
		os.Exit(1)
	}

	fmt.Println(f("Assembled to %d bytes", size))
}
