package compiler

import "errors"

// ErrUnsupportedProvider is returned for provider names without a dialect.
var ErrUnsupportedProvider = errors.New("unsupported provider")
