// Package noise provides seeded, stateless value noise for terrain and textures.
package noise

import "github.com/chewxy/math32"

// Options controls the shape of fractal noise.
// Frequency scales input coordinates; each octave multiplies the frequency
// by Lacunarity and the amplitude by Gain.
type Options struct {
	Octaves    int
	Frequency  float32
	Lacunarity float32
	Gain       float32
}

// DefaultOptions returns settings suited for rolling hills.
func DefaultOptions() Options {
	return Options{
		Octaves:    4,
		Frequency:  0.15,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// normalized fills unset fields with defaults.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Octaves <= 0 {
		o.Octaves = def.Octaves
	}
	if o.Frequency <= 0 {
		o.Frequency = def.Frequency
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = def.Lacunarity
	}
	if o.Gain <= 0 {
		o.Gain = def.Gain
	}
	return o
}

// Source is a deterministic noise generator. It holds no mutable state,
// so a Source may be shared between goroutines.
type Source struct {
	seed uint32
	opts Options
}

// New returns a Source for the given seed and options.
func New(seed int64, opts Options) Source {
	return Source{
		seed: uint32(seed) ^ uint32(seed>>32),
		opts: opts.normalized(),
	}
}

// Fractal samples layered value noise at (x, y). Output is in [0,1].
func (s Source) Fractal(x, y float32) float32 {
	var sum, maxAmp float32
	amplitude := float32(1)
	freq := s.opts.Frequency

	for i := 0; i < s.opts.Octaves; i++ {
		sum += s.value(x*freq, y*freq, s.seed+uint32(i)*0x9E3779B9) * amplitude
		maxAmp += amplitude
		amplitude *= s.opts.Gain
		freq *= s.opts.Lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return clamp01(sum / maxAmp)
}

// Value samples a single octave of smooth value noise at (x, y). Output is in [0,1].
func (s Source) Value(x, y float32) float32 {
	return s.value(x, y, s.seed)
}

// Hash returns a per-lattice-point pseudo-random value in [0,1].
func (s Source) Hash(x, y int32) float32 {
	return hash2D(x, y, s.seed)
}

func (s Source) value(x, y float32, seed uint32) float32 {
	fx := math32.Floor(x)
	fy := math32.Floor(y)
	x0 := int32(fx)
	y0 := int32(fy)

	sx := smoothStep(x - fx)
	sy := smoothStep(y - fy)

	v00 := hash2D(x0, y0, seed)
	v10 := hash2D(x0+1, y0, seed)
	v01 := hash2D(x0, y0+1, seed)
	v11 := hash2D(x0+1, y0+1, seed)

	return lerp(lerp(v00, v10, sx), lerp(v01, v11, sx), sy)
}

// hash2D maps lattice coordinates to a float in [0,1].
func hash2D(x, y int32, seed uint32) float32 {
	n := uint32(x)*374761393 + uint32(y)*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n ^= n >> 16
	return float32(n&0xFFFFFF) / float32(0xFFFFFF)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	return t * t * (3 - 2*t)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
