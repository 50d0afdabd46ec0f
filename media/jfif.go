package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
)

type dpiUnits uint8

const (
	dpiNoUnits dpiUnits = iota
	dpiPxPerInch
	dpiPxPerCm
)

// screenDPI is resolution Word assumes for images without density.
const screenDPI = 96

// ensureJFIF inserts JFIF APP0 segment with pixel density when JPEG starts
// with anything else, so Word computes natural size at screen resolution.
func ensureJFIF(data []byte, units dpiUnits, xdensity, ydensity uint16) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}

	marker := []byte{0xFF, 0xE0}
	if data[2] == marker[0] && data[3] == marker[1] {
		return data, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Grow(len(data) + 18)
	buf.Write(data[:2])
	buf.Write(marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(16))
	buf.WriteString("JFIF\x00")
	buf.Write([]byte{0x01, 0x02})
	buf.WriteByte(byte(units))
	_ = binary.Write(buf, binary.BigEndian, xdensity)
	_ = binary.Write(buf, binary.BigEndian, ydensity)
	// no thumbnail
	buf.Write([]byte{0x00, 0x00})
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// isGrayscale reports whether every pixel has R == G == B.
func isGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B || c.A != 0xFF {
				return false
			}
		}
	}
	return true
}

// toGray returns single channel copy of opaque grayscale image, PNG encoder
// stores those considerably smaller.
func toGray(img image.Image) image.Image {
	if _, ok := img.(*image.Gray); ok {
		return img
	}
	if !isGrayscale(img) {
		return img
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}
