package gif

import "errors"

// Error kinds reported by Decode. All of them are fatal to the call:
// a failure part-way through leaves no usable partial document. Match
// with errors.Is; the wrapped message carries the detail.
var (
	// ErrFormat means the stream does not follow the GIF grammar:
	// bad signature or version, an unknown block code, a sub-frame
	// outside the canvas, or a fixed-size block with the wrong length.
	ErrFormat = errors.New("gif: invalid format")

	// ErrTruncated means the stream ended while a required field,
	// fixed-size block or length-prefixed sub-block was still expected.
	ErrTruncated = errors.New("gif: truncated stream")

	// ErrUnsupported means the file combines features the decoder
	// cannot honor, such as a full 256-color table together with a
	// transparency request.
	ErrUnsupported = errors.New("gif: unsupported feature")

	// ErrInvalidArgument means a caller precondition was violated.
	ErrInvalidArgument = errors.New("gif: invalid argument")
)
