package gif

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPixelBufferPacking(t *testing.T) {
	for _, bpp := range []int{1, 2, 4, 8} {
		b := newPixelBuffer(13, 3, bpp)
		require.Equal(t, (13*bpp+7)/8, b.stride)
		require.Len(t, b.pix, b.stride*3)

		mask := byte(1<<bpp - 1)
		for y := 0; y < 3; y++ {
			for x := 0; x < 13; x++ {
				b.set(x, y, byte(x*7+y*3)&mask)
			}
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 13; x++ {
				require.Equal(t, byte(x*7+y*3)&mask, b.get(x, y), "bpp=%d x=%d y=%d", bpp, x, y)
			}
		}
	}
}

func TestPixelBufferFillRect(t *testing.T) {
	for _, bpp := range []int{1, 2, 4, 8} {
		b := newPixelBuffer(20, 6, bpp)
		r := image.Rect(3, 1, 17, 5) // unaligned edges for every depth below 8

		b.fillRect(r, 1)
		for y := 0; y < 6; y++ {
			for x := 0; x < 20; x++ {
				want := byte(0)
				if image.Pt(x, y).In(r) {
					want = 1
				}
				require.Equal(t, want, b.get(x, y), "bpp=%d x=%d y=%d", bpp, x, y)
			}
		}
	}
}

func TestPixelBufferCopyRect(t *testing.T) {
	src := newPixelBuffer(20, 4, 2)
	dst := newPixelBuffer(20, 4, 2)
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			src.set(x, y, byte(x+y)&3)
		}
	}
	r := image.Rect(3, 1, 18, 3)
	dst.copyRect(r, src)
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			want := byte(0)
			if image.Pt(x, y).In(r) {
				want = byte(x+y) & 3
			}
			require.Equal(t, want, dst.get(x, y), "x=%d y=%d", x, y)
		}
	}
}

func TestPixelBufferUpsize(t *testing.T) {
	b := newPixelBuffer(9, 3, 2)
	for y := 0; y < 3; y++ {
		for x := 0; x < 9; x++ {
			b.set(x, y, byte(x+y)&3)
		}
	}
	b.upsize(4)
	require.Equal(t, 4, b.bpp)
	require.Equal(t, 5, b.stride)
	for y := 0; y < 3; y++ {
		for x := 0; x < 9; x++ {
			require.Equal(t, byte(x+y)&3, b.get(x, y))
		}
	}
}

func TestPixelBufferReplace(t *testing.T) {
	b := newPixelBuffer(8, 2, 4)
	for x := 0; x < 8; x++ {
		b.set(x, 0, byte(x))
		b.set(x, 1, 3)
	}
	b.replace(3, 9)
	require.Equal(t, byte(9), b.get(3, 0))
	for x := 0; x < 8; x++ {
		require.Equal(t, byte(9), b.get(x, 1))
	}
	require.Equal(t, byte(2), b.get(2, 0))
}

func TestPixelCursor(t *testing.T) {
	for _, bpp := range []int{1, 2, 4, 8} {
		b := newPixelBuffer(11, 2, bpp)
		mask := byte(1<<bpp - 1)

		c := pixelCursor{buf: b}
		c.seek(0, 1)
		for x := 0; x < 11; x++ {
			c.set(byte(x) & mask)
			if x < 10 {
				c.advanceColumn()
			}
		}
		for x := 0; x < 11; x++ {
			require.Equal(t, byte(x)&mask, b.get(x, 1), "bpp=%d x=%d", bpp, x)
		}
		for x := 0; x < 11; x++ {
			require.Equal(t, byte(0), b.get(x, 0), "row 0 untouched, bpp=%d", bpp)
		}

		c.seek(4, 1)
		require.Equal(t, byte(4)&mask, c.get())
	}
}
