// Package nprand reproduces the parts of numpy.random needed to shuffle a dataset
// exactly the way `np.random.default_rng(seed).permutation(n)` does: SeedSequence
// entropy mixing, the PCG64 bit generator and the Generator shuffle.
package nprand

// SeedSequence hashing constants, from numpy/random/bit_generator.pyx.
const (
	poolSize = 4
	xshift   = 16

	initA    uint32 = 0x43b0d7e5
	multA    uint32 = 0x931e8875
	initB    uint32 = 0x8b51f9dd
	multB    uint32 = 0x58f38ded
	mixMultL uint32 = 0xca01f9dd
	mixMultR uint32 = 0x4973f715
)

// SeedSequence mixes an integer seed into a pool of well-distributed state words.
type SeedSequence struct {
	pool [poolSize]uint32
}

// NewSeedSequence builds the entropy pool for a non-negative integer seed.
func NewSeedSequence(entropy uint64) *SeedSequence {
	s := &SeedSequence{}
	s.mixEntropy(toUint32s(entropy))
	return s
}

// toUint32s splits n into little-endian 32-bit words, with zero encoded as a single word.
func toUint32s(n uint64) []uint32 {
	if n == 0 {
		return []uint32{0}
	}
	var words []uint32
	for n > 0 {
		words = append(words, uint32(n))
		n >>= 32
	}
	return words
}

func hashmix(value uint32, hashConst *uint32) uint32 {
	value ^= *hashConst
	*hashConst *= multA
	value *= *hashConst
	value ^= value >> xshift
	return value
}

func mix(x, y uint32) uint32 {
	result := mixMultL*x - mixMultR*y
	result ^= result >> xshift
	return result
}

func (s *SeedSequence) mixEntropy(entropy []uint32) {
	hashConst := initA

	for i := range s.pool {
		var v uint32
		if i < len(entropy) {
			v = entropy[i]
		}
		s.pool[i] = hashmix(v, &hashConst)
	}

	for src := range s.pool {
		for dst := range s.pool {
			if src != dst {
				s.pool[dst] = mix(s.pool[dst], hashmix(s.pool[src], &hashConst))
			}
		}
	}

	for src := poolSize; src < len(entropy); src++ {
		for dst := range s.pool {
			s.pool[dst] = mix(s.pool[dst], hashmix(entropy[src], &hashConst))
		}
	}
}

// GenerateState32 returns n 32-bit state words drawn from the pool.
func (s *SeedSequence) GenerateState32(n int) []uint32 {
	hashConst := initB
	state := make([]uint32, n)
	for i := range state {
		v := s.pool[i%poolSize]
		v ^= hashConst
		hashConst *= multB
		v *= hashConst
		v ^= v >> xshift
		state[i] = v
	}
	return state
}

// GenerateState64 returns n 64-bit state words, each assembled little-endian from
// two consecutive 32-bit words.
func (s *SeedSequence) GenerateState64(n int) []uint64 {
	words := s.GenerateState32(2 * n)
	state := make([]uint64, n)
	for i := range state {
		state[i] = uint64(words[2*i]) | uint64(words[2*i+1])<<32
	}
	return state
}
