package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/phase"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/engine/turnorder"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Battle is one running battle. It is not safe for concurrent use; callers
// serialize access.
type Battle struct {
	format     Format
	state      *state.Battle
	dispatcher *hooks.Dispatcher
	pipe       *pipeline.Pipeline
	scheduler  *phase.Scheduler
	rng        *rng.Source
	pending    map[string]Action
	log        *Log
	started    bool
}

func newBattle(e *engine, cfg *BattleConfig, seed int64) (*Battle, error) {
	st, err := state.New(state.Config{
		Catalog:      e.catalog,
		SlotsPerSide: cfg.Format.Slots(),
		Parties:      cfg.Parties,
	})
	if err != nil {
		return nil, err
	}
	src := rng.New(seed)
	dispatcher := hooks.NewDispatcher(e.registry, st)

	pipe, err := pipeline.New(&pipeline.Config{
		Battle:     st,
		Dispatcher: dispatcher,
		RNG:        src,
		Rules:      cfg.Rules,
	})
	if err != nil {
		return nil, err
	}
	scheduler, err := phase.New(&phase.Config{
		Battle:     st,
		Dispatcher: dispatcher,
		Tracer:     e.tracer,
	})
	if err != nil {
		return nil, err
	}

	b := &Battle{
		format:     cfg.Format,
		state:      st,
		dispatcher: dispatcher,
		pipe:       pipe,
		scheduler:  scheduler,
		rng:        src,
		pending:    make(map[string]Action),
		log: (&Log{
			Seed:    seed,
			Format:  cfg.Format,
			Rules:   cfg.Rules,
			Parties: cfg.Parties,
		}).Clone(),
	}
	scheduler.Push(
		phase.Unit{Kind: phase.KindBattleStart, Run: b.sendLeads},
		phase.Unit{Kind: phase.KindCommandCollection, Name: "turn_1"},
	)
	return b, nil
}

// sendLeads places the first members able to battle into each side's slots
func (b *Battle) sendLeads(ctx context.Context) error {
	var placements []pipeline.Placement
	for _, side := range b.state.Sides() {
		slot := 0
		for _, c := range side.Party() {
			if slot >= b.format.Slots() {
				break
			}
			if !c.CanBattle() {
				continue
			}
			placements = append(placements, pipeline.Placement{ID: c.ID(), Side: side.Index(), Slot: slot})
			slot++
		}
	}
	return b.pipe.Enter(ctx, placements...)
}

// Start sends out the leads and stops at the first command collection
func (b *Battle) Start(ctx context.Context) error {
	if b.started {
		return errors.FailedPrecondition("battle already started")
	}
	b.started = true
	return b.scheduler.Run(ctx)
}

// Seed is the seed the battle was built with
func (b *Battle) Seed() int64 { return b.log.Seed }

// Turn is the current turn number
func (b *Battle) Turn() int { return b.state.Turn() }

// Ended reports whether a winner has been decided
func (b *Battle) Ended() bool { return b.state.Ended() }

// Winner is the winning side, or -1
func (b *Battle) Winner() int { return b.state.Winner() }

// State exposes the read-only battle view
func (b *Battle) State() state.View { return b.state }

// Observe registers fn for every effect recorded from now on
func (b *Battle) Observe(fn func(state.Record)) { b.state.Observe(fn) }

// Effects returns every effect recorded so far
func (b *Battle) Effects() []state.Record { return b.state.Records() }

// Log returns a copy of the replay log
func (b *Battle) Log() *Log { return b.log.Clone() }

// NextPhase names the unit the scheduler will run next
func (b *Battle) NextPhase() (phase.Kind, bool) {
	u, ok := b.scheduler.Next()
	return u.Kind, ok
}

// Requests lists the combatants the engine is waiting on, in side then
// slot order. It is empty unless a command collection is pending.
func (b *Battle) Requests() []Request {
	if !b.started || b.state.Ended() || !b.scheduler.Suspended() {
		return nil
	}
	var out []Request
	for _, side := range b.state.Sides() {
		bench := b.bench(side)
		replacements := len(bench)
		for slot, c := range side.Slots() {
			if c == nil {
				continue
			}
			req := Request{CombatantID: c.ID(), Side: side.Index(), Slot: slot, Switches: bench}
			if c.Fainted() {
				// lower slots are refilled first when the bench runs short
				if replacements == 0 {
					continue
				}
				replacements--
				req.MustSwitch = true
			} else {
				req.Moves = c.Moves()
			}
			out = append(out, req)
		}
	}
	return out
}

// bench lists party members off the field that can battle
func (b *Battle) bench(side *state.Side) []string {
	var out []string
	for _, c := range side.Party() {
		if !c.OnField() && c.CanBattle() {
			out = append(out, c.ID())
		}
	}
	return out
}

func (b *Battle) request(id string) (Request, bool) {
	for _, r := range b.Requests() {
		if r.CombatantID == id {
			return r, true
		}
	}
	return Request{}, false
}

// Submit records one action for the pending turn. A later submission for
// the same combatant replaces the earlier one.
func (b *Battle) Submit(act Action) error {
	if b.state.Ended() {
		return errors.FailedPrecondition("battle has ended")
	}
	if !b.started || !b.scheduler.Suspended() {
		return errors.FailedPrecondition("no turn is waiting for actions")
	}
	req, ok := b.request(act.CombatantID)
	if !ok {
		return errors.IllegalAction(act.CombatantID, "not waiting on this combatant")
	}

	switch act.Kind {
	case ActionMove:
		if req.MustSwitch {
			return errors.IllegalAction(act.CombatantID, "fainted combatant must be replaced")
		}
		c, _ := b.state.Combatant(act.CombatantID)
		if !c.HasMove(act.MoveID) {
			return errors.IllegalAction(act.CombatantID, fmt.Sprintf("does not know move %q", act.MoveID))
		}
		if act.TargetSlot < -1 || act.TargetSlot >= b.format.Slots() {
			return errors.IllegalAction(act.CombatantID, fmt.Sprintf("target slot %d is out of range", act.TargetSlot))
		}
	case ActionSwitch:
		if !contains(req.Switches, act.SwitchTo) {
			return errors.IllegalAction(act.CombatantID, fmt.Sprintf("cannot switch to %q", act.SwitchTo))
		}
		for id, other := range b.pending {
			if id != act.CombatantID && other.Kind == ActionSwitch && other.SwitchTo == act.SwitchTo {
				return errors.IllegalAction(act.CombatantID, fmt.Sprintf("%s is already switching in", act.SwitchTo))
			}
		}
	default:
		return errors.IllegalAction(act.CombatantID, fmt.Sprintf("unknown action kind %q", act.Kind))
	}

	b.pending[act.CombatantID] = act
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ready reports whether every request has an action
func (b *Battle) Ready() bool {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if _, ok := b.pending[r.CombatantID]; !ok {
			return false
		}
	}
	return true
}

// Advance runs the pending turn to its end, or resumes a turn paused by
// RunUntil
func (b *Battle) Advance(ctx context.Context) error {
	if b.state.Ended() {
		return errors.FailedPrecondition("battle has ended")
	}
	if !b.started {
		return errors.FailedPrecondition("battle has not started")
	}
	if !b.scheduler.Suspended() {
		return b.scheduler.Run(ctx)
	}
	if err := b.beginTurn(ctx); err != nil {
		return err
	}
	return b.scheduler.Run(ctx)
}

// RunUntil runs until a unit of the given kind is next and reports whether
// it got there. A fully submitted turn is started first.
func (b *Battle) RunUntil(ctx context.Context, kind phase.Kind) (bool, error) {
	if !b.started {
		return false, errors.FailedPrecondition("battle has not started")
	}
	if b.scheduler.Suspended() && kind != phase.KindCommandCollection && b.Ready() {
		if err := b.beginTurn(ctx); err != nil {
			return false, err
		}
	}
	return b.scheduler.RunUntil(ctx, kind)
}

// beginTurn orders the collected actions and queues the turn
func (b *Battle) beginTurn(ctx context.Context) error {
	reqs := b.Requests()
	missing := 0
	for _, r := range reqs {
		if _, ok := b.pending[r.CombatantID]; !ok {
			missing++
		}
	}
	if len(reqs) == 0 || missing > 0 {
		return errors.FailedPreconditionf("waiting for %d of %d actions", missing, len(reqs))
	}

	set, err := b.dispatcher.AssembleAll()
	if err != nil {
		return err
	}
	env := b.dispatcher.Env()

	actions := make([]Action, 0, len(reqs))
	entries := make([]turnorder.Entry, 0, len(reqs))
	for i, r := range reqs {
		act := b.pending[r.CombatantID]
		actions = append(actions, act)
		c, _ := b.state.Combatant(r.CombatantID)
		entry := turnorder.Entry{ActorID: c.ID(), Side: r.Side, Slot: r.Slot, Speed: turnorder.EffectiveSpeed(set, env, c), Ref: i}
		if act.Kind == ActionSwitch {
			entry.Priority = turnorder.SwitchPriority
		} else {
			entry.Priority = turnorder.MovePriority(set, env, c, b.state.Catalog().MoveOrNeutral(act.MoveID))
		}
		entries = append(entries, entry)
	}

	ordered := turnorder.Resolve(entries, b.rng)
	units := make([]phase.Unit, 0, len(ordered))
	for _, e := range ordered {
		units = append(units, b.actionUnit(actions[e.Ref]))
	}

	turn := b.state.Turn()
	b.log.Turns = append(b.log.Turns, TurnLog{Turn: turn, Actions: actions})
	b.pending = make(map[string]Action)

	slog.Debug("Turn started", "turn", turn, "actions", len(actions))
	return b.scheduler.BeginTurn(ctx, units)
}

func (b *Battle) actionUnit(act Action) phase.Unit {
	if act.Kind == ActionSwitch {
		return phase.Unit{Kind: phase.KindSwitch, Name: act.CombatantID, Run: func(ctx context.Context) error {
			return b.pipe.Switch(ctx, act.CombatantID, act.SwitchTo)
		}}
	}
	return phase.Unit{Kind: phase.KindMoveExecution, Name: act.CombatantID, Run: func(ctx context.Context) error {
		return b.pipe.Execute(ctx, pipeline.MoveAction{ActorID: act.CombatantID, MoveID: act.MoveID, TargetSlot: act.TargetSlot})
	}}
}

// Preview estimates a move against a target the way the attacker's side
// sees it. Power goes through the live modifier chain; effectiveness uses
// the target's apparent types.
func (b *Battle) Preview(attackerID, targetID, moveID string) (*Estimate, error) {
	attacker, ok := b.state.Combatant(attackerID)
	if !ok {
		return nil, errors.NotFoundf("combatant %s not found", attackerID)
	}
	target, ok := b.state.Combatant(targetID)
	if !ok {
		return nil, errors.NotFoundf("combatant %s not found", targetID)
	}
	if !attacker.OnField() || !target.OnField() {
		return nil, errors.FailedPrecondition("both combatants must be on the field")
	}
	move := b.state.Catalog().MoveOrNeutral(moveID)

	set, err := b.dispatcher.Assemble(attacker, target)
	if err != nil {
		return nil, err
	}
	power := pipeline.CalculatePower(set, hooks.MoveContext{Env: b.dispatcher.Env(), Attacker: attacker, Target: target, Move: move}).Result()
	eff := pipeline.ObservedEffectiveness(move, target)
	score := power * eff
	if content.HasType(attacker.Types(), move.Type) {
		score *= 1.5
	}
	look := target.Appearance()
	return &Estimate{
		AttackerID:      attacker.ID(),
		TargetID:        target.ID(),
		MoveID:          move.ID,
		Power:           power,
		Effectiveness:   eff,
		ApparentSpecies: look.SpeciesID,
		ApparentTypes:   look.Types,
		Score:           score,
	}, nil
}

// PreviewAll estimates each of the attacker's moves against the target,
// best score first
func (b *Battle) PreviewAll(attackerID, targetID string) ([]*Estimate, error) {
	attacker, ok := b.state.Combatant(attackerID)
	if !ok {
		return nil, errors.NotFoundf("combatant %s not found", attackerID)
	}
	var out []*Estimate
	for _, moveID := range attacker.Moves() {
		est, err := b.Preview(attackerID, targetID, moveID)
		if err != nil {
			return nil, err
		}
		out = append(out, est)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Snapshot captures the current state
func (b *Battle) Snapshot() *Snapshot {
	snap := &Snapshot{
		Turn:   b.state.Turn(),
		Phase:  b.state.Phase(),
		Ended:  b.state.Ended(),
		Winner: b.state.Winner(),
		Field:  b.state.Field(),
	}
	for _, side := range b.state.Sides() {
		ss := SideSnapshot{Index: side.Index(), Defeated: side.Defeated()}
		for _, tag := range content.SideTags {
			if side.HasTag(tag) {
				ss.Tags = append(ss.Tags, tag)
			}
		}
		for _, c := range side.Party() {
			ss.Party = append(ss.Party, snapshotCombatant(c))
		}
		snap.Sides = append(snap.Sides, ss)
	}
	return snap
}

func snapshotCombatant(c *state.Combatant) CombatantSnapshot {
	cs := CombatantSnapshot{
		ID:         c.ID(),
		Side:       c.Side(),
		Slot:       c.Slot(),
		Species:    c.Species().ID,
		Appearance: c.Appearance(),
		Level:      c.Level(),
		HP:         c.HP(),
		MaxHP:      c.MaxHP(),
		Status:     c.Status(),
		Ability:    c.Ability(),
		Suppressed: c.AbilitySuppressed(),
		Types:      c.Types(),
		Items:      c.Items(),
		Illusion:   c.IllusionState(),
		OnField:    c.OnField(),
		Fainted:    c.Fainted(),
	}
	for _, stat := range content.StageStats {
		if n := c.Stage(stat); n != 0 {
			if cs.Stages == nil {
				cs.Stages = make(map[content.Stat]int)
			}
			cs.Stages[stat] = n
		}
	}
	return cs
}
