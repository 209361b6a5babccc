// Package texture synthesizes procedural RGBA textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// MaxSize bounds the edge length of a generated texture.
const MaxSize = 4096

// Texture errors.
var (
	ErrInvalidParameter  = errors.New("invalid texture parameter")
	ErrTextureGeneration = errors.New("texture generation failed")
)

// Texture is an immutable row-major RGBA pixel buffer.
type Texture struct {
	Width  int
	Height int
	Pix    []byte // len == Width*Height*4
}

// newSquare validates size and allocates the only pixel buffer a generator uses.
func newSquare(size int) (*Texture, error) {
	if size <= 0 || size > MaxSize {
		return nil, fmt.Errorf("%w: size %d outside [1, %d]", ErrTextureGeneration, size, MaxSize)
	}
	return &Texture{
		Width:  size,
		Height: size,
		Pix:    make([]byte, size*size*4),
	}, nil
}

// At returns the pixel at (x, y). Out-of-bounds coordinates return transparent black.
func (t *Texture) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return color.RGBA{}
	}
	i := (y*t.Width + x) * 4
	return color.RGBA{R: t.Pix[i], G: t.Pix[i+1], B: t.Pix[i+2], A: t.Pix[i+3]}
}

func (t *Texture) set(x, y int, c color.RGBA) {
	i := (y*t.Width + x) * 4
	t.Pix[i] = c.R
	t.Pix[i+1] = c.G
	t.Pix[i+2] = c.B
	t.Pix[i+3] = c.A
}

// RGBA returns an image view sharing the texture's pixels. Callers must not modify it.
func (t *Texture) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Pix,
		Stride: t.Width * 4,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// EncodePNG encodes the texture as PNG for embedding into a GLB.
func (t *Texture) EncodePNG() ([]byte, error) {
	if t.Width <= 0 || t.Height <= 0 || len(t.Pix) != t.Width*t.Height*4 {
		return nil, fmt.Errorf("%w: malformed %dx%d buffer of %d bytes",
			ErrTextureGeneration, t.Width, t.Height, len(t.Pix))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, t.RGBA()); err != nil {
		return nil, fmt.Errorf("%w: encoding png: %w", ErrTextureGeneration, err)
	}
	return buf.Bytes(), nil
}

// Hex parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA" (leading '#' optional).
func Hex(s string) (color.RGBA, error) {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	digits := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok {
			return color.RGBA{}, fmt.Errorf("%w: bad hex color %q", ErrInvalidParameter, s)
		}
		digits[i] = d
	}

	switch len(s) {
	case 3:
		return color.RGBA{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: 255}, nil
	case 4:
		return color.RGBA{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: digits[3] * 17}, nil
	case 6:
		return color.RGBA{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: 255,
		}, nil
	case 8:
		return color.RGBA{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: digits[6]<<4 | digits[7],
		}, nil
	default:
		return color.RGBA{}, fmt.Errorf("%w: bad hex color length %q", ErrInvalidParameter, s)
	}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// mix linearly interpolates two colors, t in [0,1].
func mix(a, b color.RGBA, t float32) color.RGBA {
	return color.RGBA{
		R: lerpByte(a.R, b.R, t),
		G: lerpByte(a.G, b.G, t),
		B: lerpByte(a.B, b.B, t),
		A: lerpByte(a.A, b.A, t),
	}
}

func lerpByte(a, b uint8, t float32) uint8 {
	return clampByte(float32(a) + (float32(b)-float32(a))*t)
}

// shade scales the RGB channels of c by k.
func shade(c color.RGBA, k float32) color.RGBA {
	return color.RGBA{
		R: clampByte(float32(c.R) * k),
		G: clampByte(float32(c.G) * k),
		B: clampByte(float32(c.B) * k),
		A: c.A,
	}
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
