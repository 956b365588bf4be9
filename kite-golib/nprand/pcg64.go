package nprand

import "math/bits"

// 128-bit LCG multiplier used by PCG64.
const (
	mulHi uint64 = 0x2360ed051fc65da4
	mulLo uint64 = 0x4385df649fccf645
)

// PCG64 is the PCG XSL-RR 128/64 generator with numpy's seeding and 32-bit buffering.
type PCG64 struct {
	stateHi, stateLo uint64
	incHi, incLo     uint64

	hasUint32 bool
	uinteger  uint32
}

// NewPCG64 seeds a generator the way numpy.random.PCG64(seed) does.
func NewPCG64(seed uint64) *PCG64 {
	words := NewSeedSequence(seed).GenerateState64(4)

	p := &PCG64{}
	p.setSeed(words[0], words[1], words[2], words[3])
	return p
}

func (p *PCG64) setSeed(seedHi, seedLo, seqHi, seqLo uint64) {
	p.stateHi, p.stateLo = 0, 0
	// inc = (initseq << 1) | 1
	p.incHi = seqHi<<1 | seqLo>>63
	p.incLo = seqLo<<1 | 1
	p.step()

	var carry uint64
	p.stateLo, carry = bits.Add64(p.stateLo, seedLo, 0)
	p.stateHi, _ = bits.Add64(p.stateHi, seedHi, carry)
	p.step()
}

// step advances state = state*mul + inc (mod 2^128).
func (p *PCG64) step() {
	hi, lo := bits.Mul64(p.stateLo, mulLo)
	hi += p.stateHi*mulLo + p.stateLo*mulHi

	var carry uint64
	lo, carry = bits.Add64(lo, p.incLo, 0)
	hi, _ = bits.Add64(hi, p.incHi, carry)

	p.stateHi, p.stateLo = hi, lo
}

// Uint64 returns the next 64 random bits.
func (p *PCG64) Uint64() uint64 {
	p.step()
	rot := int(p.stateHi >> 58)
	return bits.RotateLeft64(p.stateHi^p.stateLo, -rot)
}

// Uint32 returns 32 random bits, handing out the low then the high half of each 64-bit draw.
func (p *PCG64) Uint32() uint32 {
	if p.hasUint32 {
		p.hasUint32 = false
		return p.uinteger
	}
	next := p.Uint64()
	p.hasUint32 = true
	p.uinteger = uint32(next >> 32)
	return uint32(next)
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (p *PCG64) Float64() float64 {
	return float64(p.Uint64()>>11) * (1.0 / 9007199254740992.0)
}
