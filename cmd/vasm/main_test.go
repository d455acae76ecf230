package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/vm16/asm"
)

func TestDefineFlags(t *testing.T) {
	assert := assert.New(t)

	defs := defineFlags{}
	assert.NoError(defs.Set("COUNT=10"))
	assert.NoError(defs.Set("MASK=0xffff"))
	assert.Equal(defineFlags{"COUNT": 10, "MASK": -1}, defs)

	assert.Error(defs.Set("COUNT"))
	assert.Error(defs.Set("=5"))
	assert.Error(defs.Set("COUNT=ten"))
	assert.ErrorIs(defs.Set("BIG=70000"), asm.ErrNumber("70000"))
	assert.Equal(int16(10), defs["COUNT"])
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "prog.asm")
	output := filepath.Join(dir, "prog.bin")
	listing := filepath.Join(dir, "prog.lst")
	require.NoError(t, os.WriteFile(input, []byte("start:\n\tset R0, COUNT\n\tret\n"), 0o644))

	asmr := &asm.Assembler{}
	asmr.Predefine("COUNT", 3)

	size, err := assemble(asmr, "", input, output, listing)
	require.NoError(t, err)
	assert.Equal(5, size)

	image, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal([]byte{0x00, 0x12, 0x03, 0x00, 0x90}, image)

	text, err := os.ReadFile(listing)
	require.NoError(t, err)
	assert.True(strings.HasPrefix(string(text), "0000  start:\n"))

	_, err = assemble(&asm.Assembler{}, "", input, output, "")
	assert.Error(err)
}

func TestAssembleInclude(t *testing.T) {
	assert := assert.New(t)

	top := t.TempDir()
	dir := filepath.Join(top, "src")
	require.NoError(t, os.Mkdir(dir, 0o755))
	input := filepath.Join(dir, "prog.asm")
	output := filepath.Join(top, "prog.bin")
	require.NoError(t, os.WriteFile(input, []byte("#include \"lib.inc\"\n\tset R0, VALUE\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.inc"), []byte("#define VALUE 9\n"), 0o644))

	for _, include := range []string{"", top, dir} {
		size, err := assemble(&asm.Assembler{}, include, input, output, "")
		assert.NoError(err, include)
		assert.Equal(4, size, include)
	}

	// A relative input path resolves against the working directory.
	t.Chdir(top)
	size, err := assemble(&asm.Assembler{}, "", filepath.Join("src", "prog.asm"), output, "")
	assert.NoError(err)
	assert.Equal(4, size)
}
