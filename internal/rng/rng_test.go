package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"worldcell/internal/worldmodel"
)

func TestSeedIsDeterministic(t *testing.T) {
	a := Seed(10, 42, worldmodel.PhaseWeather)
	b := Seed(10, 42, worldmodel.PhaseWeather)
	assert.Equal(t, a, b)
}

func TestSeedVariesWithPhase(t *testing.T) {
	a := Seed(10, 42, worldmodel.PhaseWeather)
	b := Seed(10, 42, worldmodel.PhaseConditions)
	assert.NotEqual(t, a, b)
}

func TestSeedVariesWithTickAndCell(t *testing.T) {
	base := Seed(1, 1, worldmodel.PhaseWeather)
	assert.NotEqual(t, base, Seed(2, 1, worldmodel.PhaseWeather))
	assert.NotEqual(t, base, Seed(1, 2, worldmodel.PhaseWeather))
}

func TestZeroSeedSubstituted(t *testing.T) {
	s := New(0)
	assert.Equal(t, uint64(1), s.state)
}

func TestSourceDeterministicSequence(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestFloat64Bounds(t *testing.T) {
	s := New(999)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRangeBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Range(-10, 10)
		assert.GreaterOrEqual(t, v, -10.0)
		assert.Less(t, v, 10.0)
	}
}
