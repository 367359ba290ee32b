package rand

// mix advances the layer generator state a by b.
func mix(a, b int64) int64 {
	return a*(a*6364136223846793005+1442695040888963407) + b
}

// LayerSeed derives the seed of a biome layer from the world seed and the salt of the layer.
func LayerSeed(worldSeed, salt int64) int64 {
	s := mix(salt, salt)
	s = mix(s, salt)
	s = mix(s, salt)
	l := mix(worldSeed, s)
	l = mix(l, s)
	return mix(l, s)
}

// Point is the random stream of a single sample point of a biome layer. It is a pure function of the layer
// seed and the coordinates it was created for: two Points created for the same layer and coordinates yield
// the same values, no matter which other points were sampled in between or on which goroutine.
type Point struct {
	layerSeed int64
	state     int64
}

// PointAt returns the random stream of the layer with the seed passed at x, z.
func PointAt(layerSeed int64, x, z int) Point {
	s := layerSeed
	s = mix(s, int64(x))
	s = mix(s, int64(z))
	s = mix(s, int64(x))
	s = mix(s, int64(z))
	return Point{layerSeed: layerSeed, state: s}
}

// Intn returns the next value of the stream in [0, n). n must be positive.
func (p *Point) Intn(n int) int {
	v := (p.state >> 24) % int64(n)
	if v < 0 {
		v += int64(n)
	}
	p.state = mix(p.state, p.layerSeed)
	return int(v)
}

// Choose returns a or b with equal probability.
func (p *Point) Choose(a, b int) int {
	if p.Intn(2) == 0 {
		return a
	}
	return b
}

// Choose4 returns one of the four values passed with equal probability.
func (p *Point) Choose4(a, b, c, d int) int {
	switch p.Intn(4) {
	case 0:
		return a
	case 1:
		return b
	case 2:
		return c
	default:
		return d
	}
}
