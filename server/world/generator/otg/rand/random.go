// Package rand implements the random number generators used by terrain generation. Random reproduces the
// 48-bit linear congruential generator generation code has always been seeded with, so that decoration and
// structure placement stay compatible with existing worlds.
package rand

const (
	multiplier = 0x5DEECE66D
	addend     = 0xB
	mask       = (1 << 48) - 1
)

// Random is a seeded pseudo-random number generator. It is not safe for concurrent use.
type Random struct {
	seed int64
}

// NewRandom returns a Random seeded with the seed passed.
func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

// SetSeed resets the generator to the seed passed.
func (r *Random) SetSeed(seed int64) {
	r.seed = (seed ^ multiplier) & mask
}

func (r *Random) next(bits uint) int32 {
	r.seed = (r.seed*multiplier + addend) & mask
	return int32(r.seed >> (48 - bits))
}

// Int31 returns a non-negative random int32.
func (r *Random) Int31() int32 {
	return r.next(31)
}

// Int31n returns a random int32 in [0, n). It panics if n <= 0.
func (r *Random) Int31n(n int32) int32 {
	if n <= 0 {
		panic("rand: invalid argument to Int31n")
	}
	if n&(-n) == n {
		return int32((int64(n) * int64(r.next(31))) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % n
		if bits-val+(n-1) >= 0 {
			return val
		}
	}
}

// Intn returns a random int in [0, n). It panics if n <= 0 or n does not fit in an int32.
func (r *Random) Intn(n int) int {
	return int(r.Int31n(int32(n)))
}

// Range returns a random int32 in [min, max].
func (r *Random) Range(min, max int32) int32 {
	if max <= min {
		return min
	}
	return min + r.Int31n(max-min+1)
}

// Int63 returns a random int64, covering the full range of the type.
func (r *Random) Int63() int64 {
	return int64(r.next(32))<<32 + int64(r.next(32))
}

// Bool returns a random boolean.
func (r *Random) Bool() bool {
	return r.next(1) != 0
}

// Float32 returns a random float32 in [0, 1).
func (r *Random) Float32() float32 {
	return float32(r.next(24)) / float32(1<<24)
}

// Float64 returns a random float64 in [0, 1).
func (r *Random) Float64() float64 {
	return float64(int64(r.next(26))<<27+int64(r.next(27))) * (1.0 / float64(int64(1)<<53))
}

// ChunkSeed seeds the generator for a chunk, as done when filling base terrain.
func (r *Random) ChunkSeed(x, z int32) {
	r.SetSeed(int64(x)*341873128712 + int64(z)*132897987541)
}

// DecorationSeed seeds the generator for the decoration of the block position passed and returns the seed
// used. Resources derive their own streams from it using FeatureSeed.
func (r *Random) DecorationSeed(worldSeed int64, x, z int) int64 {
	r.SetSeed(worldSeed)
	a := r.Int63() | 1
	b := r.Int63() | 1
	seed := int64(x)*a + int64(z)*b ^ worldSeed
	r.SetSeed(seed)
	return seed
}

// FeatureSeed seeds the generator for the resource at index of a decoration step.
func (r *Random) FeatureSeed(decorationSeed int64, index, step int) {
	r.SetSeed(decorationSeed + int64(index) + int64(10000*step))
}

// LargeFeatureSeed seeds the generator for a structure placement cell.
func (r *Random) LargeFeatureSeed(worldSeed int64, cellX, cellZ int32, salt int64) {
	r.SetSeed(int64(cellX)*341873128712 + int64(cellZ)*132897987541 + worldSeed + salt)
}

// CarverSeed seeds the generator for carvers started in the chunk passed.
func (r *Random) CarverSeed(worldSeed int64, x, z int32) {
	r.SetSeed(worldSeed)
	a := r.Int63()
	b := r.Int63()
	r.SetSeed(int64(x)*a ^ int64(z)*b ^ worldSeed)
}
