package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
)

type IDGenTestSuite struct {
	suite.Suite
}

func TestIDGenSuite(t *testing.T) {
	suite.Run(t, new(IDGenTestSuite))
}

func (s *IDGenTestSuite) TestSequential() {
	gen := idgen.NewSequential("battle")
	s.Equal("battle_1", gen.Generate())
	s.Equal("battle_2", gen.Generate())

	bare := idgen.NewSequential("")
	s.Equal("1", bare.Generate())
}

func (s *IDGenTestSuite) TestUUID() {
	gen := idgen.NewUUID("battle")
	first := gen.Generate()
	second := gen.Generate()

	s.True(strings.HasPrefix(first, "battle_"))
	s.Len(first, len("battle_")+36)
	s.NotEqual(first, second)
}
