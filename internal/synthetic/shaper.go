package synthetic

import (
	"loadsmith/internal/config"
	"loadsmith/internal/core"
)

// Shaper deterministically produces the key and value bytes for a record
// index. The same index and options always yield a byte-identical record,
// so load characteristics are comparable run to run.
type Shaper struct {
	keySize         config.SizeSpec
	valueSize       config.SizeSpec
	compressibility float64
	seed            uint64
}

// NewShaper builds a shaper from validated source options.
func NewShaper(opts config.SourceOptions) *Shaper {
	return &Shaper{
		keySize:         opts.KeySize,
		valueSize:       opts.ValueSize,
		compressibility: opts.Compressibility,
		seed:            uint64(opts.Seed),
	}
}

// Shape produces the record at the given index. Range size specs resolve
// to a per-index uniform draw; fixed specs resolve to themselves.
func (s *Shaper) Shape(index uint64) core.Record {
	keyLen := resolveSize(s.keySize, s.seed, index, saltKeyLen)
	valLen := resolveSize(s.valueSize, s.seed, index, saltValLen)

	key := make([]byte, keyLen)
	fill(key, draw(s.seed, index, saltKey))

	value := make([]byte, valLen)
	fill(value, draw(s.seed, index, saltValue))

	// The compressible fraction is a run of a single repeated byte at the
	// front of the value.
	for i := 0; i < int(s.compressibility*float64(valLen)); i++ {
		value[i] = 0
	}

	return core.Record{Key: key, Value: value}
}

// Reshape produces the k-th fan-out value derived from a record, keeping
// the original length but fresh deterministic content so fanned-out records
// are not verbatim copies.
func Reshape(value []byte, seed, index uint64, k int) []byte {
	out := make([]byte, len(value))
	fill(out, draw(seed, index^uint64(k+1)<<32, saltValue))
	return out
}

func resolveSize(spec config.SizeSpec, seed, index, salt uint64) int {
	if spec.IsFixed() {
		return spec.Min
	}
	return int(drawRange(seed, index, salt, int64(spec.Min), int64(spec.Max)))
}
