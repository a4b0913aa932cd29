package gif

import "fmt"

// Block codes and extension labels of the GIF container grammar.
const (
	blockExtension       = 0x21
	blockImageDescriptor = 0x2C
	blockTrailer         = 0x3B

	extPlainText      = 0x01
	extGraphicControl = 0xF9
	extComment        = 0xFE
	extApplication    = 0xFF

	graphicControlSize = 0x04
)

/*
headerPacked {
	0-2: 	GlobalColorTableSize
	  3: 	ColorTableSortFlag   | Only valid under 89a, 87a always sets it to 0
	4-6:	ColorResolution
	  7:	GlobalColorTableFlag
}
*/

type header struct {
	Signature [3]byte // "GIF"
	Version   [3]byte // "87a" or "89a"

	// Logical Screen Descriptor
	ScreenWidth     uint16
	ScreenHeight    uint16
	Packed          byte
	BackgroundColor byte // unused if GlobalColorTableFlag is unset
	AspectRatio     byte
}

// RGB is one color table entry.
// Size of a color table is always a power of 2, with a max of 256
// entries in the table.
// ColorTableEntries = 1 << ((Packed & 7) + 1)
type RGB struct {
	Red   byte
	Green byte
	Blue  byte
}

// Palette is an ordered color table of up to 256 RGB entries.
type Palette []RGB

func (v Palette) UnmarshalBinary(data []byte) error {
	if len(v)*3 != len(data) {
		return fmt.Errorf("%w: color table length, required: %d, actual: %d", ErrFormat, len(v)*3, len(data))
	}
	for i := 0; i < len(v); i++ {
		v[i].Red = data[i*3]
		v[i].Green = data[i*3+1]
		v[i].Blue = data[i*3+2]
	}
	return nil
}

func (v Palette) MarshalBinary() []byte {
	data := make([]byte, len(v)*3)

	for i := 0; i < len(v); i++ {
		data[i*3] = v[i].Red
		data[i*3+1] = v[i].Green
		data[i*3+2] = v[i].Blue
	}

	return data
}

/*
imageDescriptorPacked {
	0-2: LocalColorTableEntrySize
	3-4: Reserved
	  5: SortFlag            | this flag is set (1) if the color table is sorted by importance. only available on 89a
	  6: InterlaceFlag       | this flag is set (1) if the image is interlaced
	  7: LocalColorTableFlag | this flag is set (1) if the image contains a local color table
}
*/

type imageDescriptor struct {
	Left   uint16 // X position of image
	Top    uint16 // Y position of image
	Width  uint16 // width of image in pixels
	Height uint16 // height of image in pixels
	Packed byte   // image and color table data information
}

/*
graphicsControlPacked {
	  0: TransparentColorFlag
	  1: UserInputFlag
	2-4: DisposalMethod
	5-7: Reserved
}
*/

// Only available on 89a, governs exactly the one rendering block that
// follows it.
type graphicsControlBlock struct {
	Packed                byte   // transparency, user input and disposal flags
	DelayTime             uint16 // delay to wait, in centiseconds
	TransparentColorIndex byte   // transparent color index
}

// disposalMethod says how a sub-frame's rectangle is handled after the
// frame has been emitted, before the next sub-frame is decoded.
type disposalMethod byte

const (
	disposalUndefined  disposalMethod = iota // treated as disposalNone
	disposalNone                             // leave the canvas as-is
	disposalBackground                       // clear the rectangle to the transparent index
	disposalPrevious                         // restore the rectangle from the previous snapshot
)
