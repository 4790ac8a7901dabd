package services

import (
	"math/rand/v2"
	"sync"
)

// NoiseSource 予測値に加える摂動の供給元。Noise は [-1, 1] の値を返す。
type NoiseSource interface {
	Noise() float64
}

// ZeroNoise 常に0を返す（決定的な予測・テスト用）
type ZeroNoise struct{}

// Noise always returns 0.
func (ZeroNoise) Noise() float64 { return 0 }

type randomNoise struct{}

func (randomNoise) Noise() float64 {
	// math/rand/v2 のトップレベル関数はゴルーチンセーフ
	return 2*rand.Float64() - 1
}

// NewRandomNoise プロセス共有の乱数を使うノイズ源を作成
func NewRandomNoise() NoiseSource {
	return randomNoise{}
}

// seededNoise is safe for concurrent use; the mutex only serialises the PCG stream.
type seededNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededNoise シード固定の再現可能なノイズ源を作成
func NewSeededNoise(seed uint64) NoiseSource {
	return &seededNoise{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededNoise) Noise() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 2*s.rng.Float64() - 1
}
