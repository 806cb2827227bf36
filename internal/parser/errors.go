package parser

import "errors"

// ErrUnsupportedFormat is returned when no decoder handles an input.
var ErrUnsupportedFormat = errors.New("unsupported project format")
