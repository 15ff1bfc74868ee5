package dcf

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid DCF magic")
	ErrUnsupportedMajor = errors.New("unsupported DCF major version")
	ErrCorruptFile      = errors.New("corrupt DCF file")
	ErrMissingSection   = errors.New("missing DCF section")
)
