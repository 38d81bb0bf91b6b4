// Package synthetic implements the deterministic record generator, the
// bounded synthetic source and the configurable stress step.
package synthetic

// Every pseudo-random decision in this package derives purely from a
// configured seed and a record index, so regenerating with the same options
// yields byte-identical records and identical injected failures. There is
// no stateful generator and no wall-clock randomness.

// Salts keep independent decisions about the same record uncorrelated.
const (
	saltKeyLen uint64 = 0xa24baed4963ee407
	saltValLen uint64 = 0x9fb21c651e98df25
	saltKey    uint64 = 0xd6e8feb86659fd93
	saltValue  uint64 = 0x2545f4914f6cdd1d
	saltDelay  uint64 = 0x5851f42d4c957f2d
	saltFail   uint64 = 0x14057b7ef767814f
)

// mix64 is the splitmix64 finalizer, a cheap bijective mixer with good
// avalanche behaviour.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// draw produces the deterministic 64-bit value for one (seed, index, salt)
// decision.
func draw(seed, index, salt uint64) uint64 {
	return mix64(seed ^ mix64(index^salt))
}

// drawFloat maps a draw onto [0.0, 1.0).
func drawFloat(seed, index, salt uint64) float64 {
	return float64(draw(seed, index, salt)>>11) / (1 << 53)
}

// drawRange maps a draw onto [min, max] inclusive.
func drawRange(seed, index, salt uint64, min, max int64) int64 {
	if min >= max {
		return min
	}
	span := uint64(max - min + 1)
	return min + int64(draw(seed, index, salt)%span)
}

// fill writes a deterministic byte stream derived from seed into b.
func fill(b []byte, seed uint64) {
	ctr := seed
	for i := 0; i < len(b); {
		ctr = mix64(ctr)
		v := ctr
		for j := 0; j < 8 && i < len(b); j++ {
			b[i] = byte(v)
			v >>= 8
			i++
		}
	}
}
