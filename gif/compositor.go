package gif

import "image"

// compositor owns the current canvas and the previous-frame snapshot.
// Sub-frames are streamed into the current buffer through a
// subframeWriter; after each emitted frame the disposal method is
// applied and the snapshot refreshed.
type compositor struct {
	cur  *pixelBuffer
	prev *pixelBuffer
}

func newCompositor(width, height, bpp int) *compositor {
	return &compositor{
		cur:  newPixelBuffer(width, height, bpp),
		prev: newPixelBuffer(width, height, bpp),
	}
}

// fill resets both buffers to a single value.
func (c *compositor) fill(v byte) {
	c.cur.fillRect(c.cur.bounds(), v)
	copy(c.prev.pix, c.cur.pix)
}

func (c *compositor) upsize(bpp int) {
	c.cur.upsize(bpp)
	c.prev.upsize(bpp)
}

func (c *compositor) replace(from, to byte) {
	c.cur.replace(from, to)
	c.prev.replace(from, to)
}

// dispose applies the frame's disposal method to the sub-frame's
// rectangle, then refreshes the previous-frame snapshot from the
// post-disposal canvas.
func (c *compositor) dispose(method disposalMethod, rect image.Rectangle, background byte) {
	switch method {
	case disposalBackground:
		c.cur.fillRect(rect, background)
	case disposalPrevious:
		c.cur.copyRect(rect, c.prev)
	}
	copy(c.prev.pix, c.cur.pix)
}

// interlacePasses is the row ordering of an interlaced sub-frame: four
// sweeps over the rectangle, each covering all columns of its rows.
var interlacePasses = [4]struct{ start, step int }{
	{0, 8},
	{4, 8},
	{2, 4},
	{1, 2},
}

// subframeWriter binds the byte sequence coming out of the LZW
// decompressor to 2-D positions inside one sub-frame rectangle. Pixels
// carrying the frame's transparent index are skipped, leaving whatever
// the canvas already holds; opaque pixels that collide with the
// document's transparency slot are rewritten to the slot's twin color.
type subframeWriter struct {
	rect        image.Rectangle
	interlaced  bool
	transparent int // per-frame transparent index, -1 when unused
	sentinel    byte
	remap       byte

	cursor pixelCursor
	pass   int
	x, y   int
	done   bool
}

func (c *compositor) beginSubframe(rect image.Rectangle, interlaced bool, transparent int, sentinel, remap byte) *subframeWriter {
	w := &subframeWriter{
		rect:        rect,
		interlaced:  interlaced,
		transparent: transparent,
		sentinel:    sentinel,
		remap:       remap,
		cursor:      pixelCursor{buf: c.cur},
	}
	if rect.Empty() {
		w.done = true
		return w
	}
	w.x, w.y = rect.Min.X, rect.Min.Y
	w.cursor.seek(w.x, w.y)
	return w
}

// writeByte places one decoded palette index. Bytes past the last pixel
// of the rectangle are discarded.
func (w *subframeWriter) writeByte(v byte) {
	if w.done {
		return
	}
	if w.transparent < 0 || int(v) != w.transparent {
		if v == w.sentinel {
			v = w.remap
		}
		w.cursor.set(v)
	}
	w.x++
	if w.x == w.rect.Max.X {
		w.nextRow()
		return
	}
	w.cursor.advanceColumn()
}

func (w *subframeWriter) nextRow() {
	w.x = w.rect.Min.X
	if !w.interlaced {
		w.y++
		if w.y >= w.rect.Max.Y {
			w.done = true
			return
		}
	} else {
		w.y += interlacePasses[w.pass].step
		for w.y >= w.rect.Max.Y {
			w.pass++
			if w.pass == len(interlacePasses) {
				w.done = true
				return
			}
			w.y = w.rect.Min.Y + interlacePasses[w.pass].start
		}
	}
	w.cursor.seek(w.x, w.y)
}
