package reader

import "errors"

var (
	ErrUnsupportedFormat = errors.New("reader: unsupported file format")
)
