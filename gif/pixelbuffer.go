package gif

import "image"

// pixelBuffer stores one palette index per pixel, packed at 1, 2, 4 or
// 8 bits per pixel without per-pixel byte waste. Pixels are packed most
// significant bits first, so a row is laid out exactly like a PNG
// indexed scanline of the same depth.
type pixelBuffer struct {
	width  int
	height int
	bpp    int // bits per pixel, one of 1, 2, 4, 8
	stride int // bytes per row, ceil(width*bpp/8)
	pix    []byte
}

func newPixelBuffer(width, height, bpp int) *pixelBuffer {
	stride := (width*bpp + 7) / 8
	return &pixelBuffer{
		width:  width,
		height: height,
		bpp:    bpp,
		stride: stride,
		pix:    make([]byte, stride*height),
	}
}

func (b *pixelBuffer) bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

func (b *pixelBuffer) get(x, y int) byte {
	off := y*b.stride + x*b.bpp/8
	shift := uint(8 - b.bpp - x*b.bpp%8)
	return b.pix[off] >> shift & byte(1<<b.bpp-1)
}

func (b *pixelBuffer) set(x, y int, v byte) {
	off := y*b.stride + x*b.bpp/8
	shift := uint(8 - b.bpp - x*b.bpp%8)
	mask := byte(1<<b.bpp-1) << shift
	b.pix[off] = b.pix[off]&^mask | v<<shift&mask
}

// fillRect bulk-fills a rectangle with one value. Columns that align to
// byte boundaries are filled a whole byte at a time; the unaligned
// edges fall back to per-pixel writes.
func (b *pixelBuffer) fillRect(r image.Rectangle, v byte) {
	ppb := 8 / b.bpp // pixels per byte
	ax0 := (r.Min.X + ppb - 1) / ppb * ppb
	ax1 := r.Max.X / ppb * ppb
	if ax0 >= ax1 {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				b.set(x, y, v)
			}
		}
		return
	}
	var pattern byte
	for i := 0; i < ppb; i++ {
		pattern = pattern<<uint(b.bpp) | v
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < ax0; x++ {
			b.set(x, y, v)
		}
		row := y * b.stride
		for o := row + ax0/ppb; o < row+ax1/ppb; o++ {
			b.pix[o] = pattern
		}
		for x := ax1; x < r.Max.X; x++ {
			b.set(x, y, v)
		}
	}
}

// copyRect overwrites a rectangle with the corresponding rectangle from
// src. Both buffers must share geometry and bit depth.
func (b *pixelBuffer) copyRect(r image.Rectangle, src *pixelBuffer) {
	ppb := 8 / b.bpp
	ax0 := (r.Min.X + ppb - 1) / ppb * ppb
	ax1 := r.Max.X / ppb * ppb
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if ax0 >= ax1 {
			for x := r.Min.X; x < r.Max.X; x++ {
				b.set(x, y, src.get(x, y))
			}
			continue
		}
		for x := r.Min.X; x < ax0; x++ {
			b.set(x, y, src.get(x, y))
		}
		o0, o1 := y*b.stride+ax0/ppb, y*b.stride+ax1/ppb
		copy(b.pix[o0:o1], src.pix[o0:o1])
		for x := ax1; x < r.Max.X; x++ {
			b.set(x, y, src.get(x, y))
		}
	}
}

// upsize reallocates the buffer at a wider bit depth, keeping every
// pixel value. The depth only ever grows, and never beyond 8.
func (b *pixelBuffer) upsize(bpp int) {
	n := newPixelBuffer(b.width, b.height, bpp)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			n.set(x, y, b.get(x, y))
		}
	}
	*b = *n
}

// replace rewrites every occurrence of one pixel value with another.
func (b *pixelBuffer) replace(from, to byte) {
	if from == to {
		return
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.get(x, y) == from {
				b.set(x, y, to)
			}
		}
	}
}

// pixelCursor is a forward-scanning position into a pixelBuffer. It
// shares the buffer's backing storage and carries the byte and bit
// offset incrementally: advancing one column never recomputes them from
// scratch, only a row seek does.
type pixelCursor struct {
	buf   *pixelBuffer
	off   int  // byte offset of the current pixel
	shift uint // right-shift that brings the pixel to the low bits
}

func (c *pixelCursor) seek(x, y int) {
	c.off = y*c.buf.stride + x*c.buf.bpp/8
	c.shift = uint(8 - c.buf.bpp - x*c.buf.bpp%8)
}

func (c *pixelCursor) advanceColumn() {
	if c.shift == 0 {
		c.off++
		c.shift = uint(8 - c.buf.bpp)
		return
	}
	c.shift -= uint(c.buf.bpp)
}

func (c *pixelCursor) get() byte {
	return c.buf.pix[c.off] >> c.shift & byte(1<<c.buf.bpp-1)
}

func (c *pixelCursor) set(v byte) {
	mask := byte(1<<c.buf.bpp-1) << c.shift
	c.buf.pix[c.off] = c.buf.pix[c.off]&^mask | v<<c.shift&mask
}
