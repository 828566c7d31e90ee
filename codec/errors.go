package codec

import "errors"

var (
	// ErrSizeMismatch is returned when an input length is not a multiple of its per-block size
	// or when the inputs of one call disagree on the number of blocks.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrMissingParity is returned when soDecode is called without parity.
	ErrMissingParity = errors.New("parity input is required")

	// ErrInvalidConfiguration is returned by structure constructors and option setters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
