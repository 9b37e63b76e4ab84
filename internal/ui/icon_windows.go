//go:build windows

package ui

import (
	"encoding/binary"
	"image"
)

// encodeIcon produces a single-image 32bpp ICO, which the Windows tray needs.
func encodeIcon(img image.Image) []byte {
	b := img.Bounds()
	size := b.Dx()

	// Bottom-up BGRA rows.
	pixels := make([]byte, 0, size*size*4)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				pixels = append(pixels, 0, 0, 0, 0)
				continue
			}
			// Un-premultiply back to straight alpha.
			pixels = append(pixels,
				byte(bl*0xffff/a>>8), byte(g*0xffff/a>>8), byte(r*0xffff/a>>8), byte(a>>8))
		}
	}
	return buildICO(size, pixels)
}

// buildICO creates a valid ICO file from BGRA pixel data.
func buildICO(size int, pixels []byte) []byte {
	const (
		headerSize    = 6 + 16
		dibHeaderSize = 40
	)
	maskSize := ((size + 31) / 32) * 4 * size
	imageSize := dibHeaderSize + len(pixels) + maskSize

	buf := make([]byte, headerSize+dibHeaderSize, headerSize+imageSize)
	le := binary.LittleEndian

	// ICONDIR
	le.PutUint16(buf[2:], 1) // ICO type
	le.PutUint16(buf[4:], 1) // 1 image

	// ICONDIRENTRY
	buf[6] = byte(size)
	buf[7] = byte(size)
	le.PutUint16(buf[10:], 1)  // planes
	le.PutUint16(buf[12:], 32) // bpp
	le.PutUint32(buf[14:], uint32(imageSize))
	le.PutUint32(buf[18:], headerSize)

	// BITMAPINFOHEADER; height covers the XOR and AND masks.
	dib := buf[headerSize:]
	le.PutUint32(dib[0:], dibHeaderSize)
	le.PutUint32(dib[4:], uint32(size))
	le.PutUint32(dib[8:], uint32(size*2))
	le.PutUint16(dib[12:], 1)
	le.PutUint16(dib[14:], 32)
	le.PutUint32(dib[20:], uint32(len(pixels)))

	buf = append(buf, pixels...)
	return append(buf, make([]byte, maskSize)...)
}
