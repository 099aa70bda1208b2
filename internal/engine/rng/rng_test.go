package rng_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

type SourceTestSuite struct {
	suite.Suite
}

func TestSourceSuite(t *testing.T) {
	suite.Run(t, new(SourceTestSuite))
}

func (s *SourceTestSuite) TestSameSeedSameStream() {
	a := rng.New(42)
	b := rng.New(42)

	for i := 0; i < 100; i++ {
		s.Equal(a.IntN(1000), b.IntN(1000))
	}
	s.Equal(uint64(100), a.Draws())
}

func (s *SourceTestSuite) TestDifferentSeedsDiverge() {
	a := rng.New(1)
	b := rng.New(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.IntN(1<<30) != b.IntN(1<<30) {
			same = false
		}
	}
	s.False(same)
}

func (s *SourceTestSuite) TestChanceEdgesDoNotDraw() {
	src := rng.New(7)
	s.True(src.Chance(100))
	s.False(src.Chance(0))
	s.Equal(uint64(0), src.Draws())

	src.Chance(50)
	s.Equal(uint64(1), src.Draws())
}

func (s *SourceTestSuite) TestRollBounds() {
	src := rng.New(9)
	for i := 0; i < 200; i++ {
		v, err := src.Roll(6)
		s.Require().NoError(err)
		s.GreaterOrEqual(v, 1)
		s.LessOrEqual(v, 6)

		r := src.Range(85, 100)
		s.GreaterOrEqual(r, 85)
		s.LessOrEqual(r, 100)
	}

	rolls, err := src.RollN(4, 6)
	s.Require().NoError(err)
	s.Len(rolls, 4)
}

func (s *SourceTestSuite) TestRollRejectsBadInput() {
	src := rng.New(9)

	_, err := src.Roll(0)
	s.True(errors.IsInvalidArgument(err))

	_, err = src.RollN(0, 6)
	s.True(errors.IsInvalidArgument(err))
}

func (s *SourceTestSuite) TestNewSeed() {
	seed, err := rng.NewSeed()
	s.Require().NoError(err)
	s.Equal(seed, rng.New(seed).Seed())
}
