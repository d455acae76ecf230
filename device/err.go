package device

import (
	"errors"

	"github.com/ezrec/vm16/translate"
)

var f = translate.From

var (
	ErrDiskImage = errors.New(f("disk image unusable"))
)
