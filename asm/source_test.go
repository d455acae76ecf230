package asm

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRoot(t *testing.T) {
	assert := assert.New(t)

	top := t.TempDir()
	sub := filepath.Join(top, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	main := filepath.Join(sub, "main.asm")
	require.NoError(t, os.WriteFile(main, []byte("#include \"lib.inc\"\nset R0, VALUE\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "lib.inc"), []byte("#define VALUE 7\n"), 0o644))

	table := []struct {
		dir  string
		name string
	}{
		{"", "main.asm"},
		{top, "sub/main.asm"},
		{sub, "main.asm"},
		{t.TempDir(), "main.asm"},
	}

	for _, entry := range table {
		root, name, err := SourceRoot(entry.dir, main)
		require.NoError(t, err, entry.dir)
		assert.Equal(entry.name, name, entry.dir)

		_, err = fs.Stat(root, name)
		assert.NoError(err, entry.dir)

		asm := &Assembler{Include: root}
		image, _, err := asm.Assemble(name, strings.NewReader("#include \"lib.inc\"\nset R0, VALUE\n"))
		assert.NoError(err, entry.dir)
		assert.Equal([]byte{0x00, 0x12, 0x07, 0x00}, image, entry.dir)
	}
}
