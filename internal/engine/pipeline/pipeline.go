// Package pipeline resolves one move action into effects and owns the
// switch-in procedure. It is the only caller of Battle.Apply while a phase
// unit runs.
package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/engine/turnorder"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Tuning constants for the standard damage model
const (
	critOdds           = 24
	critMultiplier     = 1.5
	rollMin            = 85
	rollMax            = 100
	stabMultiplier     = 1.5
	spreadMultiplier   = 0.75
	fullParalysisOdds  = 25
	sleepMinTurns      = 1
	sleepMaxTurns      = 3
	stealthRockDivisor = 8
)

// Rules are per-battle switches on the damage model
type Rules struct {
	DisableCrits bool `json:"disable_crits,omitempty" yaml:"disable_crits"`
}

// MoveAction is a move choice ready for execution
type MoveAction struct {
	ActorID string `json:"actor_id"`
	MoveID  string `json:"move_id"`
	// TargetSlot picks an opposing slot for single-target moves; -1 picks the first live foe
	TargetSlot int `json:"target_slot"`
}

// Config is the configuration for a pipeline
type Config struct {
	Battle     *state.Battle
	Dispatcher *hooks.Dispatcher
	RNG        *rng.Source
	Rules      Rules
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Battle == nil {
		vb.RequiredField("Battle")
	}
	if c.Dispatcher == nil {
		vb.RequiredField("Dispatcher")
	}
	if c.RNG == nil {
		vb.RequiredField("RNG")
	}
	return vb.Build()
}

// Pipeline executes actions against one battle
type Pipeline struct {
	battle     *state.Battle
	dispatcher *hooks.Dispatcher
	rng        *rng.Source
	rules      Rules
}

// New creates a pipeline
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Pipeline{
		battle:     cfg.Battle,
		dispatcher: cfg.Dispatcher,
		rng:        cfg.RNG,
		rules:      cfg.Rules,
	}, nil
}

func (p *Pipeline) env() hooks.Env {
	return p.dispatcher.Env()
}

func (p *Pipeline) apply(ctx context.Context, effects ...state.Effect) error {
	for _, e := range effects {
		if err := p.battle.Apply(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the eight resolution steps for one action
func (p *Pipeline) Execute(ctx context.Context, act MoveAction) error {
	actor, ok := p.battle.Combatant(act.ActorID)
	if !ok {
		return errors.Invariantf("action for unknown combatant %s", act.ActorID)
	}
	move := p.battle.Catalog().MoveOrNeutral(act.MoveID)

	// 1. legality
	if actor.Fainted() || !actor.OnField() {
		return p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Reason: state.FailFainted})
	}
	canAct, err := p.checkCanAct(ctx, actor, move)
	if err != nil || !canAct {
		return err
	}

	// 2. targets
	targets := p.resolveTargets(actor, move, act.TargetSlot)
	if move.Target != content.TargetSelf && move.Target != content.TargetField && len(targets) == 0 {
		return p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Reason: state.FailNoTarget})
	}

	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID()
	}
	if err := p.apply(ctx, state.MoveUsed{Actor: actor.ID(), Move: move.ID, Targets: ids}); err != nil {
		return err
	}

	switch move.Target {
	case content.TargetField:
		before := p.battle.RecordCount()
		if err := p.applySecondaries(ctx, actor, nil, move); err != nil {
			return err
		}
		if p.battle.RecordCount() == before {
			return p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Reason: state.FailNoEffect})
		}
		return nil
	case content.TargetSelf:
		targets = []*state.Combatant{actor}
	}

	spread := len(targets) > 1
	var firstHit *hooks.MoveContext
	var firstDamage state.Damage
	dealt := 0
	for _, target := range targets {
		if target.Fainted() {
			continue
		}
		mc, dmg, err := p.hitTarget(ctx, actor, target, move, spread)
		if err != nil {
			return err
		}
		if dmg.Amount > 0 {
			dealt += dmg.Amount
			if firstHit == nil {
				firstHit, firstDamage = mc, dmg
			}
		}
		if actor.Fainted() {
			break
		}
	}

	if dealt == 0 || actor.Fainted() {
		return nil
	}

	// recoil is indirect damage and never counts as a hit
	if move.RecoilPercent > 0 {
		if err := p.apply(ctx, state.Damage{
			Target: actor.ID(),
			Amount: max(1, dealt*move.RecoilPercent/100),
			Cause:  "recoil:" + move.ID,
		}); err != nil {
			return err
		}
	}

	set, err := p.dispatcher.Assemble(actor)
	if err != nil {
		return err
	}
	firstDamage.Amount = dealt
	return p.apply(ctx, set.HitDealt(*firstHit, firstDamage)...)
}

// checkCanAct applies sleep and paralysis and reports whether the actor moves
func (p *Pipeline) checkCanAct(ctx context.Context, actor *state.Combatant, move *content.Move) (bool, error) {
	cantAct := state.MoveFailed{Actor: actor.ID(), Move: move.ID, Reason: state.FailCantAct}
	switch actor.Status() {
	case content.StatusSleep:
		if actor.SleepTurns() > 0 {
			return false, p.apply(ctx, state.SleepTicked{Target: actor.ID()}, cantAct)
		}
		if err := p.apply(ctx, state.StatusCured{Target: actor.ID(), Status: content.StatusSleep}); err != nil {
			return false, err
		}
	case content.StatusParalysis:
		if p.rng.Chance(fullParalysisOdds) {
			return false, p.apply(ctx, cantAct)
		}
	}
	return true, nil
}

func (p *Pipeline) resolveTargets(actor *state.Combatant, move *content.Move, slot int) []*state.Combatant {
	switch move.Target {
	case content.TargetSelf, content.TargetField:
		return nil
	case content.TargetAllOpponents:
		return p.battle.Foes(actor)
	default:
		foes := p.battle.Foes(actor)
		for _, f := range foes {
			if f.Slot() == slot {
				return []*state.Combatant{f}
			}
		}
		if len(foes) > 0 {
			return foes[:1]
		}
		return nil
	}
}

// hitTarget runs steps 3 to 8 against one target
func (p *Pipeline) hitTarget(ctx context.Context, actor, target *state.Combatant, move *content.Move, spread bool) (*hooks.MoveContext, state.Damage, error) {
	set, err := p.dispatcher.Assemble(actor, target)
	if err != nil {
		return nil, state.Damage{}, err
	}
	mc := hooks.MoveContext{Env: p.env(), Attacker: actor, Target: target, Move: move, Spread: spread}

	// 3. accuracy
	if target != actor && !p.hits(set, mc) {
		return nil, state.Damage{}, p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Target: target.ID(), Reason: state.FailMiss})
	}

	if !move.Damaging() {
		before := p.battle.RecordCount()
		if err := p.applySecondaries(ctx, actor, target, move); err != nil {
			return nil, state.Damage{}, err
		}
		if p.battle.RecordCount() == before {
			return nil, state.Damage{}, p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Target: target.ID(), Reason: state.FailNoEffect})
		}
		return &mc, state.Damage{}, nil
	}

	// 4. power
	power := CalculatePower(set, mc)

	// 5. effectiveness, true perspective
	mc.Effectiveness = TrueEffectiveness(p.dispatcher, move, target)
	if mc.Effectiveness == 0 {
		return nil, state.Damage{}, p.apply(ctx, state.MoveFailed{Actor: actor.ID(), Move: move.ID, Target: target.ID(), Reason: state.FailNoEffect})
	}

	// 6. damage
	dmg := p.computeDamage(set, mc, power)
	if err := p.apply(ctx, dmg); err != nil {
		return nil, state.Damage{}, err
	}

	// 7. secondaries
	if !target.Fainted() || hasSelfSecondary(move) {
		if err := p.applySecondaries(ctx, actor, target, move); err != nil {
			return nil, state.Damage{}, err
		}
	}

	// 8. post hooks, from the set assembled before the hit landed
	if err := p.apply(ctx, set.DamageTaken(mc, dmg)...); err != nil {
		return nil, state.Damage{}, err
	}
	return &mc, dmg, nil
}

func hasSelfSecondary(move *content.Move) bool {
	for _, sec := range move.Secondaries {
		if sec.Self {
			return true
		}
	}
	return false
}

// hits draws the accuracy roll unless the move cannot miss
func (p *Pipeline) hits(set *hooks.Set, mc hooks.MoveContext) bool {
	if mc.Move.Accuracy <= 0 || set.BypassesAccuracy(mc) {
		return true
	}
	chance := HitChance(set, mc)
	if chance >= 100 {
		return true
	}
	return float64(p.rng.IntN(100)) < chance
}

// HitChance is the percent chance for mc to land
func HitChance(set *hooks.Set, mc hooks.MoveContext) float64 {
	stage := max(state.MinStage, min(state.MaxStage, mc.Attacker.Stage(content.StatAccuracy)-mc.Target.Stage(content.StatEvasion)))
	chain := hooks.Chain{Base: float64(mc.Move.Accuracy)}
	chain.Push(hooks.Mul("accuracy_stage", state.AccuracyStageMultiplier(stage)))
	chain.Steps = append(chain.Steps, set.AccuracySteps(mc)...)
	return chain.Result()
}

// CalculatePower folds the move's base power through intrinsic rules and
// every assembled power modifier
func CalculatePower(set *hooks.Set, mc hooks.MoveContext) hooks.Chain {
	chain := hooks.Chain{Base: float64(mc.Move.Power)}
	if mc.Move.PowerRule == content.PowerRuleDoubleIfTargetMoved && mc.Target != nil && mc.Target.TurnFlags().Moved {
		chain.Push(hooks.Mul(string(content.PowerRuleDoubleIfTargetMoved), 2))
	}
	chain.Steps = append(chain.Steps, set.PowerSteps(mc)...)
	return chain
}

// TrueEffectiveness uses real types and grounding
func TrueEffectiveness(q hooks.Query, move *content.Move, target *state.Combatant) float64 {
	if move.Type == content.TypeGround && !q.Grounded(target) {
		return 0
	}
	return content.Effectiveness(move.Type, target.Types())
}

// ObservedEffectiveness is what an opponent can infer: the apparent types,
// chart only. A disguise deceives this on purpose.
func ObservedEffectiveness(move *content.Move, target *state.Combatant) float64 {
	return content.Effectiveness(move.Type, target.ApparentTypes())
}

func (p *Pipeline) computeDamage(set *hooks.Set, mc hooks.MoveContext, power hooks.Chain) state.Damage {
	attacker, target, move := mc.Attacker, mc.Target, mc.Move
	atkStat, defStat := content.StatAttack, content.StatDefense
	if move.Category == content.CategorySpecial {
		atkStat, defStat = content.StatSpAtk, content.StatSpDef
	}
	a := max(1, attacker.EffectiveStat(atkStat))
	d := max(1, target.EffectiveStat(defStat))
	pw := max(1, int(power.Result()))

	base := float64((2*attacker.Level()/5+2)*pw*a/d/50 + 2)

	chain := hooks.Chain{Base: base}
	if mc.Spread {
		chain.Push(hooks.Mul("spread", spreadMultiplier))
	}
	chain.Steps = append(chain.Steps, set.DamageSteps(mc)...)

	crit := !p.rules.DisableCrits && p.rng.OneIn(critOdds)
	if crit {
		chain.Push(hooks.Mul("critical", critMultiplier))
	}
	chain.Push(hooks.Mul("roll", float64(p.rng.Range(rollMin, rollMax))/100))
	if content.HasType(attacker.Types(), move.Type) {
		chain.Push(hooks.Mul("stab", stabMultiplier))
	}
	chain.Push(hooks.Mul("effectiveness", mc.Effectiveness))

	amount := int(chain.Result())
	if amount < 1 {
		amount = 1
	}
	return state.Damage{
		Target:        target.ID(),
		Amount:        amount,
		Direct:        true,
		Cause:         "move:" + move.ID,
		Source:        attacker.ID(),
		Critical:      crit,
		Effectiveness: mc.Effectiveness,
	}
}

// applySecondaries resolves each secondary independently
func (p *Pipeline) applySecondaries(ctx context.Context, actor, target *state.Combatant, move *content.Move) error {
	for _, sec := range move.Secondaries {
		if sec.Chance > 0 && !p.rng.Chance(sec.Chance) {
			continue
		}
		recipient := target
		if sec.Self || recipient == nil {
			recipient = actor
		}
		if err := p.applySecondary(ctx, actor, recipient, sec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) applySecondary(ctx context.Context, actor, recipient *state.Combatant, sec content.Secondary) error {
	if sec.Terrain != content.TerrainNone {
		if err := p.apply(ctx, state.TerrainChanged{Terrain: sec.Terrain, Turns: state.DefaultFieldTurns}); err != nil {
			return err
		}
	}
	if sec.Weather != content.WeatherNone {
		if err := p.apply(ctx, state.WeatherChanged{Weather: sec.Weather, Turns: state.DefaultFieldTurns}); err != nil {
			return err
		}
	}
	if sec.SideTag != "" {
		for _, side := range p.battle.Sides() {
			if side.Index() == actor.Side() {
				continue
			}
			if err := p.apply(ctx, state.SideTagAdded{Side: side.Index(), Tag: sec.SideTag}); err != nil {
				return err
			}
		}
	}

	if recipient == nil || recipient.Fainted() || !recipient.OnField() {
		return nil
	}

	if sec.Status != content.StatusNone {
		if err := p.inflictStatus(ctx, recipient, sec.Status); err != nil {
			return err
		}
	}
	if len(sec.Stages) > 0 {
		stats := make([]string, 0, len(sec.Stages))
		for stat := range sec.Stages {
			stats = append(stats, string(stat))
		}
		sort.Strings(stats)
		for _, stat := range stats {
			delta := sec.Stages[content.Stat(stat)]
			if err := p.apply(ctx, state.StageChanged{Target: recipient.ID(), Stat: content.Stat(stat), Delta: delta}); err != nil {
				return err
			}
		}
	}
	if sec.SetAbility != "" {
		if err := p.ChangeAbility(ctx, recipient, sec.SetAbility); err != nil {
			return err
		}
	}
	if sec.SuppressAbility {
		if err := p.SuppressAbility(ctx, recipient); err != nil {
			return err
		}
	}
	if len(sec.SetTypes) > 0 {
		if err := p.apply(ctx, state.TypesChanged{Target: recipient.ID(), Types: sec.SetTypes}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) inflictStatus(ctx context.Context, c *state.Combatant, status content.Status) error {
	if c.Status() != content.StatusNone || statusImmune(c.Types(), status) {
		return nil
	}
	set, err := p.dispatcher.Assemble(c)
	if err != nil {
		return err
	}
	if set.StatusBlocked(p.env(), c, status) {
		return nil
	}
	turns := 0
	if status == content.StatusSleep {
		turns = p.rng.Range(sleepMinTurns, sleepMaxTurns)
	}
	return p.apply(ctx, state.StatusApplied{Target: c.ID(), Status: status, Turns: turns})
}

func statusImmune(types []content.Type, status content.Status) bool {
	switch status {
	case content.StatusBurn:
		return content.HasType(types, content.TypeFire)
	case content.StatusParalysis:
		return content.HasType(types, content.TypeElectric)
	case content.StatusPoison:
		return content.HasType(types, content.TypePoison) || content.HasType(types, content.TypeSteel)
	}
	return false
}

// ChangeAbility replaces c's ability, giving the old ability's reactors a
// chance to run first
func (p *Pipeline) ChangeAbility(ctx context.Context, c *state.Combatant, to string) error {
	current := p.battle.Catalog().AbilityOrNeutral(c.Ability())
	if current.Unreplaceable || c.Ability() == to {
		return nil
	}
	if err := p.beforeAbilityChange(ctx, c, false); err != nil {
		return err
	}
	return p.apply(ctx, state.AbilityChanged{Target: c.ID(), To: to})
}

// SuppressAbility disables c's ability for its tenure
func (p *Pipeline) SuppressAbility(ctx context.Context, c *state.Combatant) error {
	current := p.battle.Catalog().AbilityOrNeutral(c.Ability())
	if current.Unsuppressable || c.AbilitySuppressed() {
		return nil
	}
	if err := p.beforeAbilityChange(ctx, c, true); err != nil {
		return err
	}
	return p.apply(ctx, state.AbilitySuppressed{Target: c.ID()})
}

func (p *Pipeline) beforeAbilityChange(ctx context.Context, c *state.Combatant, suppressed bool) error {
	if !p.dispatcher.AbilityActive(c) {
		return nil
	}
	set, err := p.dispatcher.Assemble(c)
	if err != nil {
		return err
	}
	return p.apply(ctx, set.AbilityChange(p.env(), hooks.AbilityChange{Target: c, Suppressed: suppressed})...)
}

// Placement puts a party member in a slot
type Placement struct {
	ID   string `json:"id"`
	Side int    `json:"side"`
	Slot int    `json:"slot"`
}

// Enter places combatants on the field together, then runs entry hazards
// and switch-in reactions in effective-speed order
func (p *Pipeline) Enter(ctx context.Context, placements ...Placement) error {
	var entrants []*state.Combatant
	for _, pl := range placements {
		c, ok := p.battle.Combatant(pl.ID)
		if !ok {
			return errors.Invariantf("placement for unknown combatant %s", pl.ID)
		}
		if err := p.beforeSuppressorEnters(ctx, c); err != nil {
			return err
		}
		if err := p.apply(ctx, state.SwitchedIn{Target: c.ID(), Side: pl.Side, Slot: pl.Slot}); err != nil {
			return err
		}
		entrants = append(entrants, c)
	}

	for _, c := range entrants {
		if err := p.entryHazards(ctx, c); err != nil {
			return err
		}
	}

	all, err := p.dispatcher.AssembleAll()
	if err != nil {
		return err
	}
	speeds := make(map[string]int, len(entrants))
	for _, c := range entrants {
		speeds[c.ID()] = turnorder.EffectiveSpeed(all, p.env(), c)
	}
	sort.SliceStable(entrants, func(i, j int) bool {
		return speeds[entrants[i].ID()] > speeds[entrants[j].ID()]
	})

	for _, c := range entrants {
		if c.Fainted() || !c.OnField() {
			continue
		}
		set, err := p.dispatcher.AssembleAll()
		if err != nil {
			return err
		}
		if err := p.apply(ctx, set.SwitchIn(p.env(), c)...); err != nil {
			return err
		}
	}
	return nil
}

// Switch withdraws outgoing and sends incoming into the vacated slot
func (p *Pipeline) Switch(ctx context.Context, outgoingID, incomingID string) error {
	out, ok := p.battle.Combatant(outgoingID)
	if !ok || !out.OnField() {
		return errors.Invariantf("switch from %s which is not on the field", outgoingID)
	}
	side, slot := out.Side(), out.Slot()
	if err := p.apply(ctx, state.SwitchedOut{Target: out.ID(), Side: side, Slot: slot}); err != nil {
		return err
	}
	return p.Enter(ctx, Placement{ID: incomingID, Side: side, Slot: slot})
}

// beforeSuppressorEnters breaks what a field-wide suppressor is about to
// disable, while those abilities are still active
func (p *Pipeline) beforeSuppressorEnters(ctx context.Context, entrant *state.Combatant) error {
	ability, err := p.battle.Catalog().Ability(entrant.Ability())
	if err != nil || !ability.SuppressesOthers {
		return nil
	}
	for _, c := range p.battle.Active() {
		if c.Fainted() || c.ID() == entrant.ID() {
			continue
		}
		if p.battle.Catalog().AbilityOrNeutral(c.Ability()).Unsuppressable {
			continue
		}
		if err := p.beforeAbilityChange(ctx, c, true); err != nil {
			return err
		}
	}
	slog.Debug("Field-wide suppressor entering", "combatant_id", entrant.ID(), "ability", ability.ID)
	return nil
}

func (p *Pipeline) entryHazards(ctx context.Context, c *state.Combatant) error {
	side := p.battle.Sides()[c.Side()]
	if !side.HasTag(content.SideTagStealthRock) || c.Fainted() {
		return nil
	}
	eff := content.Effectiveness(content.TypeRock, c.Types())
	amount := int(float64(c.MaxHP()) * eff / stealthRockDivisor)
	if amount <= 0 {
		return nil
	}
	return p.apply(ctx, state.Damage{Target: c.ID(), Amount: amount, Cause: "hazard:" + string(content.SideTagStealthRock)})
}
