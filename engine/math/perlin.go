package math

import (
	gomath "math"

	"golang.org/x/exp/rand"
)

const (
	perlinSampleSize = 1024
	perlinMask       = perlinSampleSize - 1
	perlinOffset     = 0x1000
)

// Perlin is a seeded 2D gradient noise generator summed over octaves.
// The gradient tables are built lazily on the first Get.
type Perlin struct {
	octaves   int
	frequency float64
	amplitude float64
	seed      uint64
	started   bool

	p  [perlinSampleSize + perlinSampleSize + 2]int
	g2 [perlinSampleSize + perlinSampleSize + 2][2]float64
}

func NewPerlin(octaves int, frequency, amplitude float64, seed uint64) *Perlin {
	return &Perlin{
		octaves:   octaves,
		frequency: frequency,
		amplitude: amplitude,
		seed:      seed,
	}
}

// Get samples the noise at (x, y).
func (n *Perlin) Get(x, y float32) float32 {
	if !n.started {
		n.init()
		n.started = true
	}

	vec := [2]float64{float64(x) * n.frequency, float64(y) * n.frequency}
	amp := n.amplitude
	result := 0.0
	for i := 0; i < n.octaves; i++ {
		result += n.noise2(vec) * amp
		vec[0] *= 2
		vec[1] *= 2
		amp *= 0.5
	}
	return float32(result)
}

func (n *Perlin) init() {
	rng := rand.New(rand.NewSource(n.seed))

	for i := 0; i < perlinSampleSize; i++ {
		n.p[i] = i
		for j := 0; j < 2; j++ {
			n.g2[i][j] = float64(rng.Intn(perlinSampleSize+perlinSampleSize)-perlinSampleSize) / perlinSampleSize
		}
		normalize2(&n.g2[i])
	}

	for i := perlinSampleSize - 1; i > 0; i-- {
		j := rng.Intn(perlinSampleSize)
		n.p[i], n.p[j] = n.p[j], n.p[i]
	}

	for i := 0; i < perlinSampleSize+2; i++ {
		n.p[perlinSampleSize+i] = n.p[i]
		n.g2[perlinSampleSize+i] = n.g2[i]
	}
}

func normalize2(v *[2]float64) {
	s := gomath.Sqrt(v[0]*v[0] + v[1]*v[1])
	if s == 0 {
		v[0], v[1] = 1, 0
		return
	}
	v[0] /= s
	v[1] /= s
}

func sCurve(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp64(t, a, b float64) float64 {
	return a + t*(b-a)
}

func perlinSetup(v float64) (b0, b1 int, r0, r1 float64) {
	t := v + perlinOffset
	it := int(t)
	b0 = it & perlinMask
	b1 = (b0 + 1) & perlinMask
	r0 = t - float64(it)
	r1 = r0 - 1
	return
}

func (n *Perlin) noise2(vec [2]float64) float64 {
	bx0, bx1, rx0, rx1 := perlinSetup(vec[0])
	by0, by1, ry0, ry1 := perlinSetup(vec[1])

	i := n.p[bx0]
	j := n.p[bx1]

	b00 := n.p[i+by0]
	b10 := n.p[j+by0]
	b01 := n.p[i+by1]
	b11 := n.p[j+by1]

	sx := sCurve(rx0)
	sy := sCurve(ry0)

	at2 := func(q [2]float64, rx, ry float64) float64 {
		return rx*q[0] + ry*q[1]
	}

	u := at2(n.g2[b00], rx0, ry0)
	v := at2(n.g2[b10], rx1, ry0)
	a := lerp64(sx, u, v)

	u = at2(n.g2[b01], rx0, ry1)
	v = at2(n.g2[b11], rx1, ry1)
	b := lerp64(sx, u, v)

	return lerp64(sy, a, b)
}
