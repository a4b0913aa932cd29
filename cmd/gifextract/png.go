package main

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"os"

	"github.com/lwd-temp/Desktop-Ponies/gif"
)

func writeChunk(buf *bytes.Buffer, name string, data []byte) {
	var length, hash [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	binary.BigEndian.PutUint32(hash[:], crc32.Update(crc32.ChecksumIEEE([]byte(name)), crc32.IEEETable, data))

	buf.Write(length[:])
	buf.WriteString(name)
	buf.Write(data)
	buf.Write(hash[:])
}

func ihdr(fd *gif.FrameData) []byte {
	chunkData := make([]byte, 13)
	binary.BigEndian.PutUint32(chunkData[0:4], uint32(fd.Width))
	binary.BigEndian.PutUint32(chunkData[4:8], uint32(fd.Height))
	chunkData[8] = byte(fd.BitsPerPixel) // bits per palette index
	chunkData[9] = 3                     // indexed-color, which is why a PLTE chunk follows
	chunkData[10] = 0                    // compression method, always 0
	chunkData[11] = 0                    // filter method, always 0
	chunkData[12] = 0                    // not interlaced
	return chunkData
}

func trns(transparentIndex int) []byte {
	data := make([]byte, transparentIndex+1)
	for i := 0; i < transparentIndex; i++ {
		data[i] = 0xFF
	}
	data[transparentIndex] = 0
	return data
}

// serialize prefixes every row with the filter-type byte PNG expects.
// GIF frame rows are already packed the way PNG wants them.
func serialize(fd *gif.FrameData) []byte {
	rowBytes := (fd.Width*fd.BitsPerPixel + 7) / 8
	b := make([]byte, 0, (rowBytes+1)*fd.Height)
	for y := 0; y < fd.Height; y++ {
		b = append(b, 0)
		b = append(b, fd.Pix[y*fd.Stride:y*fd.Stride+rowBytes]...)
	}
	return b
}

func idat(fd *gif.FrameData) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(serialize(fd)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteToPNG stores one decoded frame as an indexed PNG, carrying the
// frame's transparent index over into a tRNS chunk.
func WriteToPNG(fd *gif.FrameData, fileName string) error {
	data, err := idat(fd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a})
	writeChunk(&buf, "IHDR", ihdr(fd))
	writeChunk(&buf, "PLTE", fd.Palette.MarshalBinary())
	if fd.TransparentIndex != -1 {
		writeChunk(&buf, "tRNS", trns(fd.TransparentIndex))
	}
	writeChunk(&buf, "IDAT", data)
	writeChunk(&buf, "IEND", nil)
	return os.WriteFile(fileName, buf.Bytes(), 0644)
}
