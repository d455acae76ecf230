package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("empty.star", "")
	require.NoError(t, err)
	assert.Equal(Default(), cfg)

	assert.Equal(60, cfg.Framerate)
	assert.Equal(10, cfg.Slow)
	assert.Equal(1000, cfg.Medium)
	assert.Equal(20000, cfg.Fast)
	assert.Equal("out.bin", cfg.DefaultFile)
	assert.Equal(uint16(1), cfg.KeyboardPort)
	assert.Equal(uint16(2), cfg.ConsolePort)
	assert.False(cfg.Controller)
	assert.Equal(uint16(100), cfg.ControllerPort)
	assert.Equal(Disk{Port: 200}, cfg.Disk)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	src := `
framerate = 50
slow = 500
medium = 5000 * 10
fast = 1000000
default_file = "game.bin"
keyboard_port = port(11)
console_port = 12
controller = True
controller_port = port(13)
disk = {"image": "disk.img", "port": port(14)}
include = "lib"
`
	cfg, err := Load("vm16.star", src)
	require.NoError(t, err)

	assert.Equal(&Config{
		Framerate:      50,
		Slow:           10,
		Medium:         1000,
		Fast:           20000,
		DefaultFile:    "game.bin",
		KeyboardPort:   11,
		ConsolePort:    12,
		Controller:     true,
		ControllerPort: 13,
		Disk:           Disk{Image: "disk.img", Port: 14},
		Include:        "lib",
	}, cfg)
}

func TestLoadPartialDisk(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("vm16.star", `disk = {"image": "a.img"}`)
	require.NoError(t, err)
	assert.Equal(Disk{Image: "a.img", Port: 200}, cfg.Disk)
}

func TestLoadErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		src string
		key string
		err error
	}{
		{`framerate = 0`, "framerate", ErrFramerate},
		{`framerate = "fast"`, "framerate", ErrType("int")},
		{`default_file = 3`, "default_file", ErrType("string")},
		{`controller = 1`, "controller", ErrType("bool")},
		{`console_port = 70000`, "console_port", ErrPort(70000)},
		{`disk = "disk.img"`, "disk", ErrType("dict")},
		{`disk = {"image": 5}`, "disk.image", ErrType("string")},
		{`disk = {"port": -1}`, "disk.port", ErrPort(-1)},
	}

	for _, entry := range table {
		cfg, err := Load("bad.star", entry.src)
		assert.Nil(cfg, entry.src)
		var keyErr *ErrConfigKey
		if assert.True(errors.As(err, &keyErr), entry.src) {
			assert.Equal(entry.key, keyErr.Key, entry.src)
		}
		assert.ErrorIs(err, entry.err, entry.src)
	}

	_, err := Load("bad.star", `keyboard_port = port(65536)`)
	assert.Error(err)

	_, err = Load("bad.star", `framerate = `)
	assert.Error(err)
}
