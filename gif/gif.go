// Package gif decodes GIF87a/GIF89a images into an ordered sequence of
// timed frames.
//
// The decoder is generic over the caller's frame image type: each
// composited frame is handed to a caller-supplied FrameFactory as a raw
// palette-indexed buffer together with the active color table and the
// resolved transparent index, and whatever the factory builds ends up
// in the document's frame list. Decoding is single-threaded and
// synchronous; one stream in, one immutable Document out.
package gif

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// FrameData is the raw composited canvas handed to a FrameFactory. Pix
// and Palette are defensive copies owned by the frame being built; the
// factory may retain them.
type FrameData struct {
	Pix          []byte // packed palette indices, most significant bits first
	Stride       int    // bytes per row, at least ceil(Width*BitsPerPixel/8)
	Width        int
	Height       int
	BitsPerPixel int     // 1, 2, 4 or 8
	Palette      Palette // snapshot of the active color table

	// TransparentIndex is the palette index to render fully
	// transparent, or -1 when no frame so far has used transparency.
	TransparentIndex int
}

// FrameFactory converts one composited frame into the caller's image
// representation. It is invoked synchronously once per emitted frame
// and must not touch decoder state.
type FrameFactory[T any] func(fd *FrameData) (T, error)

// Options carries the caller-supplied decode configuration. The zero
// value (or a nil pointer) is ready to use.
type Options struct {
	// AllowedDepths restricts the bit depths the decoder may use for
	// its pixel buffers, a subset of {1, 2, 4, 8}. 8 is mandatory, as
	// the decoder always needs one depth that can address any table.
	// Nil allows all four.
	AllowedDepths []int

	// PreProcess, when set, may rewrite the frame data in place
	// immediately before each FrameFactory call. A pass-through
	// extension point for callers needing custom transparency
	// remapping; it is not part of the decode algorithm.
	PreProcess func(*FrameData)
}

func (o *Options) validate() error {
	if o.AllowedDepths == nil {
		return nil
	}
	has8 := false
	for _, depth := range o.AllowedDepths {
		switch depth {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidArgument, depth)
		}
		if depth == 8 {
			has8 = true
		}
	}
	if !has8 {
		return fmt.Errorf("%w: allowed bit depths must include 8", ErrInvalidArgument)
	}
	return nil
}

func (o *Options) depths() []int {
	if o.AllowedDepths == nil {
		return []int{1, 2, 4, 8}
	}
	out := append([]int(nil), o.AllowedDepths...)
	sort.Ints(out)
	return out
}

// Frame is one timed frame of a decoded document.
type Frame[T any] struct {
	Image T
	Delay time.Duration

	// Palette is a snapshot of the color table active when the frame
	// was emitted. It may carry one entry more than the table on the
	// wire when a slot had to be reserved for transparency.
	Palette Palette

	// TransparentIndex mirrors FrameData.TransparentIndex.
	TransparentIndex int
}

// Document is a fully decoded GIF. It is immutable once Decode returns.
type Document[T any] struct {
	Width  int
	Height int

	// Duration is the sum of all frame delays.
	Duration time.Duration

	// LoopCount is the number of times the animation plays. 0 means
	// loop forever; 1 (the default when no looping extension is
	// present) means play once.
	LoopCount int

	Frames []Frame[T]
}

// Decode reads a complete GIF document from r in a single pass. Every
// composited frame is converted through build; opts may be nil.
//
// Decoding is all-or-nothing: any error leaves no usable partial
// document. Errors wrap one of ErrFormat, ErrTruncated, ErrUnsupported
// or ErrInvalidArgument, except errors returned by build itself, which
// are passed through.
func Decode[T any](r io.Reader, build FrameFactory[T], opts *Options) (*Document[T], error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
	}
	if build == nil {
		return nil, fmt.Errorf("%w: nil frame factory", ErrInvalidArgument)
	}
	d := &decoder[T]{r: r, build: build}
	if opts != nil {
		d.opts = *opts
	}
	if err := d.opts.validate(); err != nil {
		return nil, err
	}
	return d.decode()
}
