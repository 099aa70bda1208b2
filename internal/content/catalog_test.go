package content_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

type CatalogTestSuite struct {
	suite.Suite
	catalog *content.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) SetupTest() {
	var err error
	s.catalog, err = content.Load()
	s.Require().NoError(err)
}

func (s *CatalogTestSuite) TestSpeciesLookup() {
	zoroark, err := s.catalog.Species("zoroark")
	s.Require().NoError(err)
	s.Equal("Zoroark", zoroark.Name)
	s.Equal([]content.Type{content.TypeDark}, zoroark.Types)
	s.Equal("illusion", zoroark.Ability)
	s.Equal(105, zoroark.Base.Speed)
}

func (s *CatalogTestSuite) TestMoveDefaults() {
	quake, err := s.catalog.Move("earthquake")
	s.Require().NoError(err)
	s.Equal(100, quake.Power)
	s.True(quake.HasFlag(content.FlagGroundShaking))
	s.True(quake.Damaging())

	seed, err := s.catalog.Move("worry_seed")
	s.Require().NoError(err)
	s.Equal("Worry Seed", seed.Name)
	s.False(seed.Damaging())
	s.Equal("insomnia", seed.Secondaries[0].SetAbility)
}

func (s *CatalogTestSuite) TestAbilityFlags() {
	gas, err := s.catalog.Ability("neutralizing_gas")
	s.Require().NoError(err)
	s.True(gas.SuppressesOthers)
	s.True(gas.Unsuppressable)

	illusion, err := s.catalog.Ability("illusion")
	s.Require().NoError(err)
	s.False(illusion.SuppressesOthers)
}

func (s *CatalogTestSuite) TestMissingContent() {
	_, err := s.catalog.Move("hyper_beam")
	s.True(errors.IsMissingContent(err))

	neutral := s.catalog.MoveOrNeutral("hyper_beam")
	s.Equal(content.NeutralMoveID, neutral.ID)
	s.Equal(content.CategoryStatus, neutral.Category)
	s.False(neutral.Damaging())

	species := s.catalog.SpeciesOrNeutral("missingno")
	s.Equal([]content.Type{content.TypeUnknown}, species.Types)

	ability := s.catalog.AbilityOrNeutral("wonder_guard")
	s.Equal("wonder_guard", ability.ID)
	s.False(ability.SuppressesOthers)
}

func (s *CatalogTestSuite) TestAllSpeciesSorted() {
	all := s.catalog.AllSpecies()
	s.Require().NotEmpty(all)
	for i := 1; i < len(all); i++ {
		s.Less(all[i-1].ID, all[i].ID)
	}
}

func (s *CatalogTestSuite) TestLoadFSRejectsMalformedData() {
	fsys := fstest.MapFS{
		"species.yaml":   {Data: []byte("- {id: [broken")},
		"moves.yaml":     {Data: []byte("[]")},
		"abilities.yaml": {Data: []byte("[]")},
		"items.yaml":     {Data: []byte("[]")},
	}

	_, err := content.LoadFS(fsys)
	s.Require().Error(err)
	s.Equal(errors.CodeDataLoss, errors.GetCode(err))
}

func (s *CatalogTestSuite) TestLoadFSMissingFile() {
	_, err := content.LoadFS(fstest.MapFS{})
	s.Error(err)
}
