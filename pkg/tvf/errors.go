package tvf

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid TVF magic")
	ErrUnsupportedMajor = errors.New("unsupported TVF major version")
	ErrCorruptFile      = errors.New("corrupt TVF file")
)
