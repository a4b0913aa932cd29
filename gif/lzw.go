package gif

import (
	"fmt"
	"io"
)

const (
	maxCodes    = 4096
	maxCodeBits = 12
)

// lzwDecompressor turns the bit-code stream of a table-based image into
// a sequence of palette index bytes, following the GIF flavor of LZW:
// codes start one bit wider than the minimum code size, the dictionary
// holds at most 4096 entries identified by a (prefix code, suffix byte)
// pair, and the two codes after the root entries are reserved for
// dictionary reset and end of stream.
//
// The decompressor knows nothing about 2-D geometry; it is a pure
// byte-stream transducer.
type lzwDecompressor struct {
	prefix [maxCodes]uint16
	suffix [maxCodes]byte
	stack  [maxCodes + 1]byte
}

// decompress reads codes from src until an end code, a code beyond the
// defined dictionary, or the end of the image's sub-block data, calling
// emit once per decoded palette index byte.
func (l *lzwDecompressor) decompress(src *blockReader, minCodeSize int, emit func(byte)) error {
	if minCodeSize < 2 || minCodeSize > 8 {
		return fmt.Errorf("%w: LZW minimum code size %d", ErrFormat, minCodeSize)
	}
	clear := 1 << minCodeSize
	end := clear + 1
	next := clear + 2 // first dictionary slot past the reserved codes
	width := minCodeSize + 1
	last := -1

	var bits, nbits uint
	for {
		for nbits < uint(width) {
			b, err := src.readByte()
			if err == io.EOF {
				// data ran out without an explicit end code
				return nil
			}
			if err != nil {
				return err
			}
			bits |= uint(b) << nbits
			nbits += 8
		}
		code := int(bits & (1<<uint(width) - 1))
		bits >>= uint(width)
		nbits -= uint(width)

		switch {
		case code == clear:
			next = clear + 2
			width = minCodeSize + 1
			last = -1
			continue
		case code == end:
			return nil
		case last < 0:
			// first code after a reset must be a root
			if code >= clear {
				return nil
			}
			emit(byte(code))
			last = code
			continue
		case code > next:
			// beyond the defined dictionary: treated as end of data
			return nil
		}

		sp := 0
		c := code
		if code == next {
			// The code being defined right now: it expands to the
			// previous code's string plus that string's own first
			// byte, so reserve the bottom slot and walk the previous
			// chain instead.
			sp = 1
			c = last
		}
		for c >= clear {
			l.stack[sp] = l.suffix[c]
			sp++
			c = int(l.prefix[c])
		}
		l.stack[sp] = byte(c) // root byte, emitted first
		sp++
		if code == next {
			l.stack[0] = byte(c)
		}
		for i := sp - 1; i >= 0; i-- {
			emit(l.stack[i])
		}

		if next < maxCodes {
			l.prefix[next] = uint16(last)
			l.suffix[next] = byte(c)
			next++
			if next >= 1<<uint(width) && width < maxCodeBits {
				width++
			}
		}
		last = code
	}
}
