// Package encounter implements mystery encounters that hand a prepared
// roster to the battle service. The Dark Deal trades a random party member
// for a boss fight against a legendary-tier species.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter Service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
)

const (
	// DarkDealMinWave and DarkDealMaxWave bound where the deal can appear
	DarkDealMinWave = 30
	DarkDealMaxWave = 180

	// DarkDealMinParty is the fewest members able to battle the deal needs
	DarkDealMinParty = 2

	// RogueBallID is the reward item for accepting
	RogueBallID    = "rogue_ball"
	RogueBallCount = 5

	// BossID is the combatant id of the Dark Deal boss
	BossID = "boss"

	bossMoveCount = 4
	fallbackMove  = "tackle"
)

// excludedBossTags keeps mythical, ultra beast, paradox, and flagged
// species out of the boss pool
var excludedBossTags = []string{
	content.TagMythical,
	content.TagUltraBeast,
	content.TagParadox,
	content.TagNoBoss,
}

// Service defines the interface for encounter operations
type Service interface {
	// OfferDarkDeal checks the requirements and records the offer
	OfferDarkDeal(ctx context.Context, input *OfferDarkDealInput) (*OfferDarkDealOutput, error)

	// ResolveDarkDeal applies the chosen option
	ResolveDarkDeal(ctx context.Context, input *ResolveDarkDealInput) (*ResolveDarkDealOutput, error)
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	Catalog       *content.Catalog
	BattleService battle.Service
	EncounterRepo encounters.Repository
	IDGenerator   idgen.Generator
	Roller        dice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.BattleService == nil {
		vb.RequiredField("BattleService")
	}
	if c.EncounterRepo == nil {
		vb.RequiredField("EncounterRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type orchestrator struct {
	catalog *content.Catalog
	battles battle.Service
	repo    encounters.Repository
	idGen   idgen.Generator
	roller  dice.Roller
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		catalog: cfg.Catalog,
		battles: cfg.BattleService,
		repo:    cfg.EncounterRepo,
		idGen:   cfg.IDGenerator,
		roller:  cfg.Roller,
	}, nil
}

func ableCount(party []encounters.PartyMember) int {
	n := 0
	for _, pm := range party {
		if !pm.Fainted {
			n++
		}
	}
	return n
}

// OfferDarkDeal records a Dark Deal for a run that meets its requirements
func (o *orchestrator) OfferDarkDeal(ctx context.Context, input *OfferDarkDealInput) (*OfferDarkDealOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Wave < DarkDealMinWave || input.Wave > DarkDealMaxWave {
		return nil, errors.FailedPreconditionf("wave %d is outside %d-%d", input.Wave, DarkDealMinWave, DarkDealMaxWave)
	}
	if len(input.Party) > engine.MaxPartySize {
		return nil, errors.InvalidArgumentf("party has %d members, at most %d allowed", len(input.Party), engine.MaxPartySize)
	}
	if able := ableCount(input.Party); able < DarkDealMinParty {
		return nil, errors.FailedPreconditionf("party needs %d members able to battle, has %d", DarkDealMinParty, able)
	}
	if input.SingleType != "" && !content.HasType(content.AllTypes(), input.SingleType) {
		return nil, errors.InvalidArgumentf("unknown type %q", input.SingleType)
	}

	id := o.idGen.Generate()
	_, err := o.repo.Save(ctx, &encounters.SaveInput{Data: &encounters.EncounterData{
		ID:         id,
		Kind:       encounters.KindDarkDeal,
		Status:     encounters.StatusOffered,
		Wave:       input.Wave,
		Party:      input.Party,
		SingleType: input.SingleType,
	}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to save encounter")
	}

	slog.Info("Dark deal offered",
		"encounter_id", id,
		"wave", input.Wave,
		"party_size", len(input.Party))

	return &OfferDarkDealOutput{
		EncounterID:  id,
		Options:      []Option{OptionAccept, OptionRefuse},
		CatchAllowed: true,
	}, nil
}

// ResolveDarkDeal applies the chosen option to an offered deal
func (o *orchestrator) ResolveDarkDeal(ctx context.Context, input *ResolveDarkDealInput) (*ResolveDarkDealOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Option != OptionAccept && input.Option != OptionRefuse {
		return nil, errors.InvalidArgumentf("unknown option %q", input.Option)
	}

	got, err := o.repo.Get(ctx, &encounters.GetInput{EncounterID: input.EncounterID})
	if err != nil {
		return nil, err
	}
	enc := got.Data
	if enc.Status != encounters.StatusOffered {
		return nil, errors.FailedPreconditionf("encounter %s was already %s", enc.ID, enc.Status)
	}

	if input.Option == OptionRefuse {
		if _, err := o.repo.Update(ctx, &encounters.UpdateInput{
			EncounterID: enc.ID,
			Status:      encounters.StatusRefused,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to update encounter")
		}
		slog.Info("Dark deal refused", "encounter_id", enc.ID)
		return &ResolveDarkDealOutput{Status: encounters.StatusRefused, Party: enc.Party}, nil
	}

	return o.accept(ctx, enc, input.Seed)
}

func (o *orchestrator) accept(ctx context.Context, enc *encounters.EncounterData, seed int64) (*ResolveDarkDealOutput, error) {
	removedAt, err := o.pickRemoved(enc.Party)
	if err != nil {
		return nil, err
	}
	removed := enc.Party[removedAt].Member
	party := append(append([]encounters.PartyMember(nil), enc.Party[:removedAt]...), enc.Party[removedAt+1:]...)

	payload := &encounters.DarkDealPayload{
		RemovedMember: removed,
		RemovedTypes:  o.catalog.SpeciesOrNeutral(removed.Species).Types,
		RemovedItems:  o.transferableItems(removed.Items),
	}

	bossTypes := payload.RemovedTypes
	if enc.SingleType != "" {
		bossTypes = []content.Type{enc.SingleType}
	}
	payload.Tier, err = o.rollTier()
	if err != nil {
		return nil, err
	}
	boss, err := o.pickBoss(payload.Tier, bossTypes)
	if err != nil {
		return nil, err
	}
	payload.BossSpecies = boss.ID

	var roster []state.Member
	for _, pm := range party {
		if !pm.Fainted {
			roster = append(roster, pm.Member)
		}
	}
	bossMember := state.Member{
		ID:      BossID,
		Species: boss.ID,
		Level:   bossLevel(roster),
		Items:   payload.RemovedItems,
		Moves:   o.bossMoves(boss),
		Boss:    true,
	}

	started, err := o.battles.StartBattle(ctx, &battle.StartBattleInput{
		Format:  engine.FormatSingles,
		Seed:    seed,
		Parties: [][]state.Member{roster, {bossMember}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start boss battle")
	}

	if _, err := o.repo.Update(ctx, &encounters.UpdateInput{
		EncounterID: enc.ID,
		Status:      encounters.StatusAccepted,
		Party:       party,
		Payload:     payload,
		BattleID:    started.BattleID,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to update encounter")
	}

	slog.Info("Dark deal accepted",
		"encounter_id", enc.ID,
		"removed_species", removed.Species,
		"boss_species", boss.ID,
		"tier", payload.Tier,
		"battle_id", started.BattleID)

	return &ResolveDarkDealOutput{
		Status:  encounters.StatusAccepted,
		Party:   party,
		Payload: payload,
		Rewards: []Reward{{ItemID: RogueBallID, Count: RogueBallCount}},
		Battle:  started,
	}, nil
}

// pickRemoved draws a random party index, fainted members included, but
// never the last member able to battle
func (o *orchestrator) pickRemoved(party []encounters.PartyMember) (int, error) {
	candidates := make([]int, 0, len(party))
	lastAble := ableCount(party) == 1
	for i, pm := range party {
		if lastAble && !pm.Fainted {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return 0, errors.FailedPrecondition("no party member can be removed")
	}
	roll, err := o.roller.Roll(len(candidates))
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll removed member")
	}
	return candidates[roll-1], nil
}

func (o *orchestrator) transferableItems(items []state.HeldItem) []state.HeldItem {
	var out []state.HeldItem
	for _, it := range items {
		if o.catalog.ItemOrNeutral(it.ID).FormChange {
			continue
		}
		out = append(out, it)
	}
	return out
}

// tierRange is an inclusive starter cost band
type tierRange struct{ lo, hi int }

func (t tierRange) contains(cost int) bool { return cost >= t.lo && cost <= t.hi }

// rollTier draws the starter tier: 35% tier 6, 50% tier 7, 10% tier 8,
// 5% tier 9 or 10. It returns the band's lower bound.
func (o *orchestrator) rollTier() (int, error) {
	roll, err := o.roller.Roll(100)
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll tier")
	}
	switch r := roll - 1; {
	case r >= 65:
		return 6, nil
	case r >= 15:
		return 7, nil
	case r >= 5:
		return 8, nil
	default:
		return 9, nil
	}
}

func tierBand(tier int) tierRange {
	if tier >= 9 {
		return tierRange{9, 10}
	}
	return tierRange{tier, tier}
}

func bossEligible(sp *content.Species) bool {
	for _, tag := range excludedBossTags {
		if sp.HasTag(tag) {
			return false
		}
	}
	return true
}

// pickBoss draws a species from the tier that shares a type with types.
// With no typed match it draws from the whole tier.
func (o *orchestrator) pickBoss(tier int, types []content.Type) (*content.Species, error) {
	band := tierBand(tier)
	var tiered, typed []*content.Species
	for _, sp := range o.catalog.AllSpecies() {
		if !band.contains(sp.Cost) || !bossEligible(sp) {
			continue
		}
		tiered = append(tiered, sp)
		for _, t := range types {
			if content.HasType(sp.Types, t) {
				typed = append(typed, sp)
				break
			}
		}
	}

	pool := typed
	if len(pool) == 0 {
		slog.Debug("No boss shares the removed types, using the whole tier",
			"tier", tier,
			"types", types)
		pool = tiered
	}
	if len(pool) == 0 {
		return nil, errors.Internalf("no boss species at tier %d", tier)
	}
	roll, err := o.roller.Roll(len(pool))
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll boss species")
	}
	return pool[roll-1], nil
}

// bossLevel matches the strongest member left in the party
func bossLevel(roster []state.Member) int {
	level := engine.MinLevel
	for _, m := range roster {
		level = max(level, m.Level)
	}
	return min(level, engine.MaxLevel)
}

// bossMoves picks the strongest damaging moves of the boss's own types
func (o *orchestrator) bossMoves(sp *content.Species) []string {
	var pool []*content.Move
	for _, mv := range o.catalog.AllMoves() {
		if mv.Damaging() && content.HasType(sp.Types, mv.Type) {
			pool = append(pool, mv)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Power > pool[j].Power })

	moves := make([]string, 0, bossMoveCount)
	for _, mv := range pool[:min(len(pool), bossMoveCount)] {
		moves = append(moves, mv.ID)
	}
	if len(moves) == 0 {
		moves = append(moves, fallbackMove)
	}
	return moves
}
