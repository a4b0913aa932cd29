package gif

import (
	"fmt"
	"io"
)

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// blockReader exposes the length-prefixed data sub-blocks that carry a
// table-based image's compressed pixel stream as one contiguous byte
// sequence. readByte reports io.EOF once the zero-length terminator
// sub-block is reached; a stream that dries up mid-block reports
// ErrTruncated instead.
type blockReader struct {
	buf     [255]byte
	bufLen  int
	bufNext int
	r       io.Reader
	err     error
}

func newBlockReader(r io.Reader) *blockReader {
	return &blockReader{r: r}
}

func (v *blockReader) readNextBlock() error {
	blockSize, err := readByte(v.r)
	if err != nil {
		return fmt.Errorf("%w: sub-block size", ErrTruncated)
	}
	if blockSize == 0 {
		return io.EOF
	}
	if _, err := io.ReadFull(v.r, v.buf[:blockSize]); err != nil {
		return fmt.Errorf("%w: sub-block of %d bytes", ErrTruncated, blockSize)
	}
	v.bufLen = int(blockSize)
	v.bufNext = 0
	return nil
}

func (v *blockReader) readByte() (byte, error) {
	if v.err != nil {
		return 0, v.err
	}
	if v.bufNext >= v.bufLen {
		if v.err = v.readNextBlock(); v.err != nil {
			return 0, v.err
		}
	}
	b := v.buf[v.bufNext]
	v.bufNext++
	return b, nil
}

// drain discards everything up to and including the terminator, so the
// outer block loop resumes at a block boundary even when decompression
// stopped before consuming all sub-blocks.
func (v *blockReader) drain() error {
	if v.err == io.EOF {
		return nil
	}
	if v.err != nil {
		return v.err
	}
	for {
		err := v.readNextBlock()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
