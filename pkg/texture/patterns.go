package texture

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/Faultbox/assetgen/pkg/noise"
)

// Axis selects the direction of a gradient.
type Axis int

// Gradient axes.
const (
	AxisX      Axis = iota // Left to right
	AxisY                  // Top to bottom
	AxisRadial             // Center to corners
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisRadial:
		return "radial"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Palette defaults.
var (
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black      = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	BrickRed   = color.RGBA{R: 180, G: 100, B: 80, A: 255}
	MortarGray = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	WoodBrown  = color.RGBA{R: 139, G: 119, B: 99, A: 255}
	GlowOrange = color.RGBA{R: 255, G: 127, B: 0, A: 255}
	DeepBlue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// Checkerboard alternates colorA and colorB per tile, tileCount tiles per side.
func Checkerboard(size, tileCount int, colorA, colorB color.RGBA) (*Texture, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: checkerboard size %d", ErrInvalidParameter, size)
	}
	if tileCount <= 0 {
		return nil, fmt.Errorf("%w: checkerboard tile count %d", ErrInvalidParameter, tileCount)
	}
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	for y := range size {
		ty := y * tileCount / size
		for x := range size {
			tx := x * tileCount / size
			if (tx+ty)%2 == 0 {
				tex.set(x, y, colorA)
			} else {
				tex.set(x, y, colorB)
			}
		}
	}
	return tex, nil
}

// Gradient interpolates from colorStart to colorEnd along axis.
func Gradient(size int, colorStart, colorEnd color.RGBA, axis Axis) (*Texture, error) {
	if axis < AxisX || axis > AxisRadial {
		return nil, fmt.Errorf("%w: gradient axis %s", ErrInvalidParameter, axis)
	}
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	span := float32(size - 1)
	center := span / 2
	maxDist := center * math32.Sqrt2

	for y := range size {
		for x := range size {
			var t float32
			switch axis {
			case AxisX:
				if span > 0 {
					t = float32(x) / span
				}
			case AxisY:
				if span > 0 {
					t = float32(y) / span
				}
			case AxisRadial:
				if maxDist > 0 {
					dx := float32(x) - center
					dy := float32(y) - center
					t = math32.Min(math32.Sqrt(dx*dx+dy*dy)/maxDist, 1)
				}
			}
			tex.set(x, y, mix(colorStart, colorEnd, t))
		}
	}
	return tex, nil
}

// WoodGrain draws concentric rings around the texture center.
func WoodGrain(size, ringCount int, baseColor color.RGBA) (*Texture, error) {
	if ringCount <= 0 {
		return nil, fmt.Errorf("%w: wood ring count %d", ErrInvalidParameter, ringCount)
	}
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	center := float32(size-1) / 2
	maxDist := center * math32.Sqrt2
	if maxDist == 0 {
		maxDist = 1
	}

	for y := range size {
		for x := range size {
			dx := float32(x) - center
			dy := float32(y) - center
			d := math32.Sqrt(dx*dx+dy*dy) / maxDist

			ring := 0.5 + 0.5*math32.Sin(d*float32(ringCount)*2*math32.Pi)
			grain := 0.06*math32.Sin(float32(y)*0.3) + 0.04*math32.Sin(float32(x)*0.1)
			tex.set(x, y, shade(baseColor, 0.75+0.3*ring+grain))
		}
	}
	return tex, nil
}

// Brick lays running-bond bricks of brickWidth x brickHeight pixels with mortar joints.
func Brick(size, brickWidth, brickHeight int, mortarColor color.RGBA) (*Texture, error) {
	if brickWidth <= 0 || brickHeight <= 0 {
		return nil, fmt.Errorf("%w: brick %dx%d", ErrInvalidParameter, brickWidth, brickHeight)
	}
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	joint := 2
	if brickWidth <= 4 || brickHeight <= 4 {
		joint = 1
	}
	tint := noise.New(int64(brickWidth)<<16|int64(brickHeight), noise.Options{})

	for y := range size {
		row := y / brickHeight
		offset := 0
		if row%2 == 1 {
			offset = brickWidth / 2
		}
		inRowY := y % brickHeight

		for x := range size {
			col := (x + offset) / brickWidth
			inBrickX := (x + offset) % brickWidth

			if inBrickX >= brickWidth-joint || inRowY >= brickHeight-joint {
				tex.set(x, y, mortarColor)
				continue
			}
			k := 0.9 + 0.2*tint.Hash(int32(col), int32(row))
			tex.set(x, y, shade(BrickRed, k))
		}
	}
	return tex, nil
}

// GrassNoise maps fractal value noise to a green palette.
// The same seed always yields identical pixels.
func GrassNoise(size int, seed int64) (*Texture, error) {
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	src := noise.New(seed, noise.Options{
		Octaves:    4,
		Frequency:  16 / float32(size),
		Lacunarity: 2,
		Gain:       0.5,
	})

	for y := range size {
		for x := range size {
			n := 0.7*src.Fractal(float32(x), float32(y)) + 0.3*src.Hash(int32(x), int32(y))
			g := 50 + 100*n
			tex.set(x, y, color.RGBA{
				R: clampByte(g / 3),
				G: clampByte(g),
				B: clampByte(g / 4),
				A: 255,
			})
		}
	}
	return tex, nil
}

// Bark draws brown vertical streaks for tree trunks.
func Bark(size int, seed int64) (*Texture, error) {
	tex, err := newSquare(size)
	if err != nil {
		return nil, err
	}

	src := noise.New(seed, noise.Options{Octaves: 3, Frequency: 1, Lacunarity: 2, Gain: 0.5})

	for y := range size {
		for x := range size {
			fx := float32(x)
			fy := float32(y)
			streak := src.Fractal(fx*0.25, fy*0.02)
			b := 101 + 30*math32.Sin(fy*0.2)*math32.Cos(fx*0.3) + 40*(streak-0.5)
			tex.set(x, y, color.RGBA{
				R: clampByte(b),
				G: clampByte(b - 20),
				B: clampByte(b - 40),
				A: 255,
			})
		}
	}
	return tex, nil
}
