package gif

// Hand-constructed GIF fixtures for the decoder tests. The builder
// writes the container grammar byte by byte; packCodes packs an LZW
// code sequence tracking the same dictionary growth and code width
// rules the decoder follows, so fixtures can spell out their code
// streams explicitly.

import "bytes"

type builder struct {
	bytes.Buffer
}

func (b *builder) writeUint16(v int) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
}

// sizeField encodes a color table entry count as the packed-field size
// bits: entries = 1 << (field + 1).
func sizeField(entries int) byte {
	var f byte
	for 2<<f < entries {
		f++
	}
	return f
}

func (b *builder) header(width, height int, global Palette) {
	b.WriteString("GIF89a")
	b.writeUint16(width)
	b.writeUint16(height)
	var packed byte
	if global != nil {
		packed = 0x80 | sizeField(len(global))
	}
	b.WriteByte(packed)
	b.WriteByte(0) // background color index
	b.WriteByte(0) // aspect ratio
	if global != nil {
		b.Write(global.MarshalBinary())
	}
}

// graphicControl writes a graphics control extension. transparent < 0
// leaves the transparency flag clear.
func (b *builder) graphicControl(disposal byte, transparent int, delayCS int) {
	b.Write([]byte{blockExtension, extGraphicControl, graphicControlSize})
	packed := disposal << 2
	var tIdx byte
	if transparent >= 0 {
		packed |= 1
		tIdx = byte(transparent)
	}
	b.WriteByte(packed)
	b.writeUint16(delayCS)
	b.WriteByte(tIdx)
	b.WriteByte(0)
}

func (b *builder) netscapeLoop(count int) {
	b.Write([]byte{blockExtension, extApplication, 11})
	b.WriteString("NETSCAPE2.0")
	b.Write([]byte{3, 1, byte(count), byte(count >> 8), 0})
}

func (b *builder) comment(text string) {
	b.Write([]byte{blockExtension, extComment, byte(len(text))})
	b.WriteString(text)
	b.WriteByte(0)
}

func (b *builder) plainText(text string) {
	b.Write([]byte{blockExtension, extPlainText, 12})
	b.Write(make([]byte, 12))
	b.WriteByte(byte(len(text)))
	b.WriteString(text)
	b.WriteByte(0)
}

func (b *builder) image(x, y, w, h int, interlaced bool, local Palette, minCodeSize int, codes []int) {
	b.WriteByte(blockImageDescriptor)
	b.writeUint16(x)
	b.writeUint16(y)
	b.writeUint16(w)
	b.writeUint16(h)
	var packed byte
	if local != nil {
		packed |= 0x80 | sizeField(len(local))
	}
	if interlaced {
		packed |= 0x40
	}
	b.WriteByte(packed)
	if local != nil {
		b.Write(local.MarshalBinary())
	}
	b.WriteByte(byte(minCodeSize))
	data := packCodes(minCodeSize, codes)
	for len(data) > 0 {
		n := len(data)
		if n > 255 {
			n = 255
		}
		b.WriteByte(byte(n))
		b.Write(data[:n])
		data = data[n:]
	}
	b.WriteByte(0)
}

func (b *builder) trailer() {
	b.WriteByte(blockTrailer)
}

// packCodes packs LZW codes least significant bit first, mirroring the
// decoder's dictionary growth so each code is written at the width the
// decoder will read it with.
func packCodes(minCodeSize int, codes []int) []byte {
	clear := 1 << minCodeSize
	end := clear + 1
	next := clear + 2
	width := minCodeSize + 1
	last := -1

	var out []byte
	var bits, nbits uint
	for _, code := range codes {
		bits |= uint(code) << nbits
		nbits += uint(width)
		for nbits >= 8 {
			out = append(out, byte(bits))
			bits >>= 8
			nbits -= 8
		}
		switch {
		case code == clear:
			next = clear + 2
			width = minCodeSize + 1
			last = -1
		case code == end:
		default:
			if last >= 0 && next < maxCodes {
				next++
				if next >= 1<<uint(width) && width < maxCodeBits {
					width++
				}
			}
			last = code
		}
	}
	if nbits > 0 {
		out = append(out, byte(bits))
	}
	return out
}

// literalCodes encodes pixels as bare root codes, resetting the
// dictionary before every one so the code width never grows.
func literalCodes(minCodeSize int, pixels []byte) []int {
	clear := 1 << minCodeSize
	codes := make([]int, 0, 2*len(pixels)+1)
	for _, p := range pixels {
		codes = append(codes, clear, int(p))
	}
	return append(codes, clear+1)
}

// grid unpacks a frame's pixel buffer into one flat row-major byte per
// pixel, whatever the frame's bit depth.
func grid(fd *FrameData) []byte {
	out := make([]byte, 0, fd.Width*fd.Height)
	for y := 0; y < fd.Height; y++ {
		for x := 0; x < fd.Width; x++ {
			off := y*fd.Stride + x*fd.BitsPerPixel/8
			shift := uint(8 - fd.BitsPerPixel - x*fd.BitsPerPixel%8)
			out = append(out, fd.Pix[off]>>shift&byte(1<<fd.BitsPerPixel-1))
		}
	}
	return out
}

func keepFrame(fd *FrameData) (*FrameData, error) {
	return fd, nil
}

func grayPalette(entries int) Palette {
	p := make(Palette, entries)
	for i := range p {
		p[i] = RGB{byte(i), byte(i), byte(i)}
	}
	return p
}
