package nprand

// Generator mirrors numpy.random.Generator backed by PCG64.
type Generator struct {
	bits *PCG64
}

// DefaultRNG is np.random.default_rng(seed).
func DefaultRNG(seed uint64) *Generator {
	return &Generator{bits: NewPCG64(seed)}
}

// Float64 is Generator.random().
func (g *Generator) Float64() float64 {
	return g.bits.Float64()
}

// interval returns a value in [0, max] by masked rejection sampling.
func (g *Generator) interval(max uint64) uint64 {
	if max == 0 {
		return 0
	}

	mask := max
	mask |= mask >> 1
	mask |= mask >> 2
	mask |= mask >> 4
	mask |= mask >> 8
	mask |= mask >> 16
	mask |= mask >> 32

	var value uint64
	if max <= 0xffffffff {
		for {
			value = uint64(g.bits.Uint32()) & mask
			if value <= max {
				return value
			}
		}
	}
	for {
		value = g.bits.Uint64() & mask
		if value <= max {
			return value
		}
	}
}

// Shuffle permutes n elements in place through swap, walking from the last element
// down as Generator.shuffle does for a 1-d array.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(g.interval(uint64(i)))
		swap(i, j)
	}
}

// Permutation is Generator.permutation(n).
func (g *Generator) Permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	g.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	return perm
}
