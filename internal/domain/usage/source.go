package usage

import (
	"math/rand/v2"
	"time"
)

// Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic PCG source for the given seed and stream.
func NewSource(seed, stream uint64) Source {
	return rand.New(rand.NewPCG(seed, stream))
}

// DayStream identifies a calendar day as yyyymmdd so that each day gets its
// own reproducible sequence under one seed.
func DayStream(day time.Time) uint64 {
	y, m, d := day.Date()
	return uint64(y)*10000 + uint64(m)*100 + uint64(d)
}

// MinuteStream identifies the wall-clock minute of t.
func MinuteStream(t time.Time) uint64 {
	return uint64(t.Unix() / 60)
}
