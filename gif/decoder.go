package gif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"time"
)

// graphicControl is the decoded form of a graphics control extension.
// It governs exactly the one rendering block that follows it.
type graphicControl struct {
	disposal    disposalMethod
	userInput   bool
	transparent bool
	delay       time.Duration
	index       byte
}

type decoder[T any] struct {
	r     io.Reader
	build FrameFactory[T]
	opts  Options

	hdr    header
	bounds image.Rectangle
	global Palette

	// Active color table and its transparency resolution. The
	// transparency slot is the one palette index that stands for "no
	// pixel here" throughout the document; remap is a lower index with
	// the same color, substituted wherever the slot's true color is
	// used opaquely.
	table       Palette // active table as read from the stream
	active      Palette // table plus the synthetic transparency entry, when one was reserved
	transparent int
	remap       int
	noSpare     bool // 256 distinct entries, nothing to give up for transparency

	anyTransparency bool

	comp *compositor
	lzw  lzwDecompressor

	pending    graphicControl
	hasPending bool

	doc *Document[T]

	tmp [1024]byte // scratch, large enough for a 256-entry color table
}

func (d *decoder[T]) decode() (*Document[T], error) {
	if err := d.readHeaderAndScreen(); err != nil {
		return nil, err
	}
	d.doc = &Document[T]{
		Width:     d.bounds.Dx(),
		Height:    d.bounds.Dy(),
		LoopCount: 1,
	}
	for {
		c, err := d.nextByte("block code")
		if err != nil {
			return nil, err
		}
		switch c {
		case blockExtension:
			if err := d.readExtension(); err != nil {
				return nil, err
			}
		case blockImageDescriptor:
			if err := d.readTableBasedImage(); err != nil {
				return nil, err
			}
		case blockTrailer:
			return d.doc, nil
		default:
			return nil, fmt.Errorf("%w: unknown block code 0x%02x", ErrFormat, c)
		}
	}
}

func (d *decoder[T]) nextByte(what string) (byte, error) {
	b, err := readByte(d.r)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return b, nil
}

func (d *decoder[T]) readFull(p []byte, what string) error {
	if _, err := io.ReadFull(d.r, p); err != nil {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return nil
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' }

func (d *decoder[T]) readHeaderAndScreen() error {
	if err := d.readFull(d.tmp[:13], "header and logical screen descriptor"); err != nil {
		return err
	}
	if err := binary.Read(bytes.NewReader(d.tmp[:13]), binary.LittleEndian, &d.hdr); err != nil {
		return err
	}
	if string(d.hdr.Signature[:]) != "GIF" {
		return fmt.Errorf("%w: bad signature %q", ErrFormat, d.hdr.Signature)
	}
	v := d.hdr.Version
	if !isDigit(v[0]) || !isDigit(v[1]) || !isLetter(v[2]) {
		return fmt.Errorf("%w: bad version %q", ErrFormat, v)
	}
	d.bounds = image.Rect(0, 0, int(d.hdr.ScreenWidth), int(d.hdr.ScreenHeight))

	if d.hdr.Packed&0x80 != 0 {
		entries := 1 << (d.hdr.Packed&7 + 1)
		global, err := d.readColorTable(entries)
		if err != nil {
			return err
		}
		d.global = global
	}
	return nil
}

func (d *decoder[T]) readColorTable(entries int) (Palette, error) {
	if err := d.readFull(d.tmp[:3*entries], "color table"); err != nil {
		return nil, err
	}
	p := make(Palette, entries)
	if err := p.UnmarshalBinary(d.tmp[:3*entries]); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *decoder[T]) readExtension() error {
	label, err := d.nextByte("extension label")
	if err != nil {
		return err
	}
	switch label {
	case extGraphicControl:
		return d.readGraphicControl()
	case extApplication:
		return d.readApplication()
	case extPlainText:
		// A rendering block: it consumes any pending graphic control.
		d.hasPending = false
		size, err := d.nextByte("plain text header size")
		if err != nil {
			return err
		}
		if err := d.readFull(d.tmp[:size], "plain text header"); err != nil {
			return err
		}
		return d.skipSubBlocks()
	case extComment:
		return d.skipSubBlocks()
	default:
		// unrecognized extensions are tolerated and skipped
		return d.skipSubBlocks()
	}
}

func (d *decoder[T]) skipSubBlocks() error {
	for {
		size, err := d.nextByte("sub-block size")
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}
		if err := d.readFull(d.tmp[:size], "sub-block"); err != nil {
			return err
		}
	}
}

func (d *decoder[T]) readGraphicControl() error {
	size, err := d.nextByte("graphic control size")
	if err != nil {
		return err
	}
	if size != graphicControlSize {
		return fmt.Errorf("%w: graphic control block size %d", ErrFormat, size)
	}
	if err := d.readFull(d.tmp[:graphicControlSize], "graphic control block"); err != nil {
		return err
	}
	var block graphicsControlBlock
	if err := binary.Read(bytes.NewReader(d.tmp[:graphicControlSize]), binary.LittleEndian, &block); err != nil {
		return err
	}
	term, err := d.nextByte("graphic control terminator")
	if err != nil {
		return err
	}
	if term != 0 {
		return fmt.Errorf("%w: graphic control block not terminated", ErrFormat)
	}

	gc := graphicControl{
		userInput:   block.Packed&2 != 0,
		transparent: block.Packed&1 != 0,
		delay:       time.Duration(block.DelayTime) * 10 * time.Millisecond,
		index:       block.TransparentColorIndex,
	}
	switch block.Packed >> 2 & 7 {
	case 1:
		gc.disposal = disposalNone
	case 2:
		gc.disposal = disposalBackground
	case 3:
		gc.disposal = disposalPrevious
	default:
		gc.disposal = disposalUndefined
	}
	d.pending, d.hasPending = gc, true
	return nil
}

func (d *decoder[T]) readApplication() error {
	size, err := d.nextByte("application extension size")
	if err != nil {
		return err
	}
	if err := d.readFull(d.tmp[:size], "application extension header"); err != nil {
		return err
	}
	if size == 11 && string(d.tmp[:8]) == "NETSCAPE" && string(d.tmp[8:11]) == "2.0" {
		return d.readLoopCount()
	}
	return d.skipSubBlocks()
}

// readLoopCount reads the sub-blocks of the looping-control application
// extension. A count of 0 means the animation loops forever.
func (d *decoder[T]) readLoopCount() error {
	for {
		size, err := d.nextByte("looping extension sub-block size")
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}
		if err := d.readFull(d.tmp[:size], "looping extension sub-block"); err != nil {
			return err
		}
		if size == 3 && d.tmp[0] == 1 {
			d.doc.LoopCount = int(d.tmp[1]) | int(d.tmp[2])<<8
		}
	}
}

// resolveTransparency picks the palette slot that stands for
// transparent pixels. Preferred is a duplicated color: scanning from
// the end of the table backward, the highest index with a twin lower
// down becomes the slot and the twin takes over its opaque uses.
// Failing that, a synthetic entry is reserved past the table's end. A
// full 256-entry table of distinct colors leaves no room at all: slot
// 255 is the best-effort fallback and noSpare is reported.
func resolveTransparency(table Palette) (transparent, remap int, noSpare bool) {
	for i := len(table) - 1; i > 0; i-- {
		for j := 0; j < i; j++ {
			if table[j] == table[i] {
				return i, j, false
			}
		}
	}
	if len(table) < 256 {
		return len(table), len(table), false
	}
	return 255, 255, true
}

func palettesEqual(a, b Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// activateTable makes a color table the active one. The first table
// seen sizes the pixel buffers and resolves the transparency slot; a
// later swap re-runs the resolution, widens the buffers if the new
// table needs more bits, and rewrites the old slot's occurrences in
// both buffers to the new one.
func (d *decoder[T]) activateTable(table Palette) error {
	if d.comp != nil && palettesEqual(table, d.table) {
		return nil
	}

	transparent, remap, noSpare := resolveTransparency(table)
	active := table
	if transparent == len(table) {
		active = append(append(Palette{}, table...), RGB{})
	}
	depth, err := d.depthFor(len(active))
	if err != nil {
		return err
	}

	if d.comp == nil {
		d.comp = newCompositor(d.bounds.Dx(), d.bounds.Dy(), depth)
		d.comp.fill(byte(transparent))
	} else {
		if depth > d.comp.cur.bpp {
			d.comp.upsize(depth)
		}
		if transparent != d.transparent {
			d.comp.replace(byte(d.transparent), byte(transparent))
		}
	}

	d.table, d.active = table, active
	d.transparent, d.remap, d.noSpare = transparent, remap, noSpare
	return nil
}

// depthFor returns the smallest allowed bit depth that can address
// every entry of the active table.
func (d *decoder[T]) depthFor(entries int) (int, error) {
	bits := 1
	for 1<<bits < entries {
		bits++
	}
	for _, depth := range d.opts.depths() {
		if depth >= bits {
			return depth, nil
		}
	}
	return 0, fmt.Errorf("%w: no allowed bit depth fits %d colors", ErrUnsupported, entries)
}

func (d *decoder[T]) readTableBasedImage() error {
	if err := d.readFull(d.tmp[:9], "image descriptor"); err != nil {
		return err
	}
	var desc imageDescriptor
	if err := binary.Read(bytes.NewReader(d.tmp[:9]), binary.LittleEndian, &desc); err != nil {
		return err
	}

	rect := image.Rect(
		int(desc.Left),
		int(desc.Top),
		int(desc.Left)+int(desc.Width),
		int(desc.Top)+int(desc.Height),
	)
	// GIF89a section 20: each image must fit within the boundaries of
	// the logical screen.
	if !rect.In(d.bounds) {
		return fmt.Errorf("%w: image %v outside canvas %v", ErrFormat, rect, d.bounds)
	}

	table := d.global
	if desc.Packed&0x80 != 0 {
		entries := 1 << (desc.Packed&7 + 1)
		local, err := d.readColorTable(entries)
		if err != nil {
			return err
		}
		table = local
	}
	if table == nil {
		return fmt.Errorf("%w: image with no color table", ErrFormat)
	}
	if err := d.activateTable(table); err != nil {
		return err
	}

	var gc graphicControl
	if d.hasPending {
		gc, d.hasPending = d.pending, false
	}

	frameTransparent := -1
	if gc.transparent {
		if d.noSpare {
			return fmt.Errorf("%w: 256-color tables cannot combine with transparency", ErrUnsupported)
		}
		d.anyTransparency = true
		frameTransparent = int(gc.index)
	}

	minCodeSize, err := d.nextByte("LZW minimum code size")
	if err != nil {
		return err
	}

	sw := d.comp.beginSubframe(rect, desc.Packed&0x40 != 0, frameTransparent, byte(d.transparent), byte(d.remap))
	br := newBlockReader(d.r)
	if err := d.lzw.decompress(br, int(minCodeSize), sw.writeByte); err != nil {
		return err
	}
	if err := br.drain(); err != nil {
		return err
	}

	if err := d.emitFrame(gc.delay); err != nil {
		return err
	}
	d.comp.dispose(gc.disposal, rect, byte(d.transparent))
	return nil
}

func (d *decoder[T]) emitFrame(delay time.Duration) error {
	cur := d.comp.cur
	fd := &FrameData{
		Pix:              append([]byte(nil), cur.pix...),
		Stride:           cur.stride,
		Width:            cur.width,
		Height:           cur.height,
		BitsPerPixel:     cur.bpp,
		Palette:          append(Palette(nil), d.active...),
		TransparentIndex: -1,
	}
	if d.anyTransparency {
		fd.TransparentIndex = d.transparent
	}
	if d.opts.PreProcess != nil {
		d.opts.PreProcess(fd)
	}
	img, err := d.build(fd)
	if err != nil {
		return fmt.Errorf("building frame %d: %w", len(d.doc.Frames), err)
	}
	d.doc.Frames = append(d.doc.Frames, Frame[T]{
		Image:            img,
		Delay:            delay,
		Palette:          fd.Palette,
		TransparentIndex: fd.TransparentIndex,
	})
	d.doc.Duration += delay
	return nil
}
