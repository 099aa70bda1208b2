package hooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks/rules"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctx     context.Context
	catalog *content.Catalog
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) SetupSuite() {
	var err error
	s.catalog, err = content.Load()
	s.Require().NoError(err)
	s.ctx = context.Background()
}

// doubles builds a two-slot battle and sends the first two members of each side in
func (s *DispatcherTestSuite) doubles(left, right []state.Member) *state.Battle {
	b, err := state.New(state.Config{Catalog: s.catalog, SlotsPerSide: 2, Parties: [][]state.Member{left, right}})
	s.Require().NoError(err)
	for side, party := range [][]state.Member{left, right} {
		for slot := 0; slot < 2 && slot < len(party); slot++ {
			s.Require().NoError(b.Apply(s.ctx, state.SwitchedIn{Target: party[slot].ID, Side: side, Slot: slot}))
		}
	}
	return b
}

func member(id, species string, items ...state.HeldItem) state.Member {
	return state.Member{ID: id, Species: species, Level: 50, Moves: []string{"tackle"}, Items: items}
}

func (s *DispatcherTestSuite) get(b *state.Battle, id string) *state.Combatant {
	c, ok := b.Combatant(id)
	s.Require().True(ok)
	return c
}

func (s *DispatcherTestSuite) TestGasSuppressesOthersButNotItself() {
	b := s.doubles(
		[]state.Member{member("zoroark", "zoroark"), member("machamp", "machamp")},
		[]state.Member{member("weezing", "weezing"), member("necrozma", "necrozma")},
	)
	d := hooks.NewDispatcher(rules.NewRegistry(), b)

	s.False(d.AbilityActive(s.get(b, "zoroark")))
	s.False(d.AbilityActive(s.get(b, "machamp")))
	s.True(d.AbilityActive(s.get(b, "weezing")))
	s.True(d.AbilityActive(s.get(b, "necrozma")), "prism armor is unsuppressable")

	set, err := d.AssembleAll()
	s.Require().NoError(err)
	for _, h := range set.Handlers() {
		s.NotEqual("ability:illusion", h.ID())
		s.NotEqual("ability:no_guard", h.ID())
	}
}

func (s *DispatcherTestSuite) TestFaintedGasHolderStopsSuppressing() {
	b := s.doubles(
		[]state.Member{member("zoroark", "zoroark"), member("machamp", "machamp")},
		[]state.Member{member("weezing", "weezing"), member("pikachu", "pikachu")},
	)
	d := hooks.NewDispatcher(rules.NewRegistry(), b)
	s.Require().NoError(b.Apply(s.ctx, state.Damage{Target: "weezing", Amount: 9999, Cause: "test"}))

	s.True(d.AbilityActive(s.get(b, "machamp")))
}

func (s *DispatcherTestSuite) TestDirectSuppression() {
	b := s.doubles(
		[]state.Member{member("machamp", "machamp")},
		[]state.Member{member("pikachu", "pikachu")},
	)
	d := hooks.NewDispatcher(rules.NewRegistry(), b)
	s.Require().NoError(b.Apply(s.ctx, state.AbilitySuppressed{Target: "machamp"}))

	s.False(d.AbilityActive(s.get(b, "machamp")))
}

func (s *DispatcherTestSuite) TestGrounded() {
	b := s.doubles(
		[]state.Member{member("shuckle", "shuckle"), member("ninjask", "ninjask")},
		[]state.Member{member("bronzong", "bronzong"), member("pikachu", "pikachu", state.HeldItem{ID: "air_balloon", Count: 1})},
	)
	d := hooks.NewDispatcher(rules.NewRegistry(), b)

	s.True(d.Grounded(s.get(b, "shuckle")))
	s.False(d.Grounded(s.get(b, "ninjask")))
	s.False(d.Grounded(s.get(b, "bronzong")))
	s.False(d.Grounded(s.get(b, "pikachu")))

	s.Require().NoError(b.Apply(s.ctx, state.ItemConsumed{Target: "pikachu", Item: "air_balloon"}))
	s.True(d.Grounded(s.get(b, "pikachu")))
}

func (s *DispatcherTestSuite) TestDispatchPrecedence() {
	b := s.doubles(
		[]state.Member{member("scizor", "scizor", state.HeldItem{ID: "life_orb", Count: 1})},
		[]state.Member{member("pikachu", "pikachu")},
	)
	s.Require().NoError(b.Apply(s.ctx, state.TerrainChanged{Terrain: content.TerrainGrassy, Turns: 5}))
	s.Require().NoError(b.Apply(s.ctx, state.StatusApplied{Target: "scizor", Status: content.StatusBurn}))
	d := hooks.NewDispatcher(rules.NewRegistry(), b)

	set, err := d.Assemble(s.get(b, "scizor"))
	s.Require().NoError(err)

	var sources []hooks.Source
	for _, h := range set.Handlers() {
		sources = append(sources, h.Source())
	}
	s.Equal([]hooks.Source{hooks.SourceField, hooks.SourceField, hooks.SourceAbility, hooks.SourceItem}, sources)
}

func (s *DispatcherTestSuite) TestGrassyTerrainPowerStep() {
	b := s.doubles(
		[]state.Member{member("garchomp", "garchomp")},
		[]state.Member{member("shuckle", "shuckle"), member("ninjask", "ninjask")},
	)
	s.Require().NoError(b.Apply(s.ctx, state.TerrainChanged{Terrain: content.TerrainGrassy, Turns: 5}))
	d := hooks.NewDispatcher(rules.NewRegistry(), b)
	quake, err := s.catalog.Move("earthquake")
	s.Require().NoError(err)

	for _, tc := range []struct {
		target   string
		expected float64
	}{
		{"shuckle", 50},
		{"ninjask", 100},
	} {
		s.Run(tc.target, func() {
			attacker, target := s.get(b, "garchomp"), s.get(b, tc.target)
			set, err := d.Assemble(attacker, target)
			s.Require().NoError(err)
			mc := hooks.MoveContext{Env: d.Env(), Attacker: attacker, Target: target, Move: quake}
			chain := hooks.Chain{Base: float64(quake.Power), Steps: set.PowerSteps(mc)}
			s.InDelta(tc.expected, chain.Result(), 0.0001)
		})
	}
}

type brokenHandler struct{ hooks.Base }

func (s *DispatcherTestSuite) TestCapabilityMismatchIsInvariant() {
	registry := rules.NewRegistry()
	registry.RegisterAbility("static", func(b hooks.Binding) hooks.Handler {
		return &brokenHandler{hooks.NewBase("ability:static", hooks.SourceAbility, b.Owner, hooks.CapPower)}
	})
	b := s.doubles(
		[]state.Member{member("pikachu", "pikachu")},
		[]state.Member{member("shuckle", "shuckle")},
	)
	d := hooks.NewDispatcher(registry, b)

	_, err := d.AssembleAll()
	s.True(errors.IsInvariant(err))
}

func (s *DispatcherTestSuite) TestChainFold() {
	chain := hooks.Chain{Base: 100}
	chain.Push(hooks.Mul("half", 0.5))
	chain.Push(hooks.Add("flat", 10))
	chain.Push(hooks.Mul("boost", 1.5))
	s.InDelta(90, chain.Result(), 0.0001)
}

func (s *DispatcherTestSuite) TestResidualUnitsInOrder() {
	s.Equal([]hooks.ResidualUnit{
		hooks.UnitWeather, hooks.UnitBerry, hooks.UnitTerrain, hooks.UnitItem, hooks.UnitStatus, hooks.UnitAbility,
	}, hooks.ResidualOrder)
}
