package chip8

import (
	"math/rand/v2"
	"time"
)

// ByteSource supplies the random bytes consumed by Cxkk.
type ByteSource interface {
	Byte() byte
}

type pcgSource struct {
	rng *rand.Rand
}

// NewByteSource returns a deterministic source for the given seed.
func NewByteSource(seed uint64) ByteSource {
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (s *pcgSource) Byte() byte {
	return byte(s.rng.Uint32())
}

func timeSeededSource() ByteSource {
	return NewByteSource(uint64(time.Now().UnixNano()))
}
