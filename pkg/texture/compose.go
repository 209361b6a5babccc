package texture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
)

// Facade colors.
var (
	frameColor  = color.RGBA{R: 60, G: 50, B: 45, A: 255}
	glassColor  = color.RGBA{R: 120, G: 170, B: 210, A: 255}
	doorColor   = color.RGBA{R: 100, G: 60, B: 30, A: 255}
	handleColor = color.RGBA{R: 210, G: 180, B: 60, A: 255}
)

// Facade returns a copy of base with a cols x rows grid of windows drawn
// inside region. The bottom-center cell holds a door instead of a window.
func Facade(base *Texture, region image.Rectangle, cols, rows int) (*Texture, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base texture", ErrInvalidParameter)
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: facade grid %dx%d", ErrInvalidParameter, cols, rows)
	}
	bounds := image.Rect(0, 0, base.Width, base.Height)
	if region.Empty() || !region.In(bounds) {
		return nil, fmt.Errorf("%w: facade region %v outside %v", ErrInvalidParameter, region, bounds)
	}
	if region.Dx() < cols || region.Dy() < rows {
		return nil, fmt.Errorf("%w: facade region %v too small for %dx%d grid",
			ErrInvalidParameter, region, cols, rows)
	}

	out := &Texture{
		Width:  base.Width,
		Height: base.Height,
		Pix:    make([]byte, len(base.Pix)),
	}
	copy(out.Pix, base.Pix)
	dst := out.RGBA()

	window := windowTile()
	door := doorTile()
	doorCol := cols / 2

	for r := range rows {
		for c := range cols {
			cell := image.Rect(
				region.Min.X+c*region.Dx()/cols,
				region.Min.Y+r*region.Dy()/rows,
				region.Min.X+(c+1)*region.Dx()/cols,
				region.Min.Y+(r+1)*region.Dy()/rows,
			)
			insetX := cell.Dx() / 5
			insetY := cell.Dy() / 6

			if r == rows-1 && c == doorCol {
				rect := image.Rect(cell.Min.X+insetX, cell.Min.Y+insetY, cell.Max.X-insetX, cell.Max.Y)
				draw.NearestNeighbor.Scale(dst, rect, door, door.Bounds(), draw.Over, nil)
				continue
			}
			rect := image.Rect(cell.Min.X+insetX, cell.Min.Y+insetY, cell.Max.X-insetX, cell.Max.Y-insetY)
			draw.NearestNeighbor.Scale(dst, rect, window, window.Bounds(), draw.Over, nil)
		}
	}
	return out, nil
}

// windowTile is a framed pane with a cross mullion.
func windowTile() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 2, 14, 14), image.NewUniform(glassColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(7, 2, 9, 14), image.NewUniform(frameColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 7, 14, 9), image.NewUniform(frameColor), image.Point{}, draw.Src)
	return img
}

// doorTile is a framed wooden door with a handle.
func doorTile() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 16, 24))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 2, 14, 24), image.NewUniform(doorColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(11, 12, 13, 14), image.NewUniform(handleColor), image.Point{}, draw.Src)
	return img
}

// NormalMap derives a tangent-space normal map from the luminance of src.
// The height field is smoothed first so single-pixel noise does not alias.
func NormalMap(src *Texture, strength float32) (*Texture, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source texture", ErrInvalidParameter)
	}
	if strength <= 0 {
		return nil, fmt.Errorf("%w: normal strength %f", ErrInvalidParameter, strength)
	}
	if src.Width <= 0 || src.Height <= 0 || len(src.Pix) != src.Width*src.Height*4 {
		return nil, fmt.Errorf("%w: malformed source %dx%d", ErrTextureGeneration, src.Width, src.Height)
	}

	smooth := blur.Gaussian(src.RGBA(), 1.0)
	w, h := src.Width, src.Height

	height := func(x, y int) float32 {
		// Wrap so the normal map tiles like its source.
		x = (x%w + w) % w
		y = (y%h + h) % h
		i := y*smooth.Stride + x*4
		p := smooth.Pix[i : i+3 : i+3]
		return (0.299*float32(p[0]) + 0.587*float32(p[1]) + 0.114*float32(p[2])) / 255
	}

	out := &Texture{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := range h {
		for x := range w {
			dx := (height(x+1, y) - height(x-1, y)) * strength
			dy := (height(x, y+1) - height(x, y-1)) * strength

			nx, ny, nz := -dx, -dy, float32(1)
			l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
			out.set(x, y, color.RGBA{
				R: clampByte((nx/l*0.5 + 0.5) * 255),
				G: clampByte((ny/l*0.5 + 0.5) * 255),
				B: clampByte((nz/l*0.5 + 0.5) * 255),
				A: 255,
			})
		}
	}
	return out, nil
}
