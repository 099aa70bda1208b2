// Package turnorder sequences a turn's actions.
//
// Order is priority descending, then effective speed descending, then a
// seeded tie-break key. Every entry draws its key in canonical (side, slot)
// order before sorting, so the draw count per turn is fixed and a tied group
// is ordered by one random permutation rather than pairwise flips. The result
// is computed once per turn and never re-sorted.
package turnorder

import (
	"math"
	"sort"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// SwitchPriority is the bracket of non-move actions
const SwitchPriority = 6

// Entry is one action awaiting a slot in the order
type Entry struct {
	ActorID  string `json:"actor_id"`
	Side     int    `json:"side"`
	Slot     int    `json:"slot"`
	Priority int    `json:"priority"`
	Speed    int    `json:"speed"`
	Key      int    `json:"key"`
	// Ref points back at the caller's action
	Ref int `json:"ref"`
}

// Resolve returns entries in execution order. The input slice is not modified.
func Resolve(entries []Entry, src *rng.Source) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Side != out[j].Side {
			return out[i].Side < out[j].Side
		}
		return out[i].Slot < out[j].Slot
	})
	for i := range out {
		out[i].Key = src.IntN(math.MaxInt32)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Speed != b.Speed {
			return a.Speed > b.Speed
		}
		return a.Key < b.Key
	})
	return out
}

// EffectiveSpeed is the staged speed folded through the speed chain
func EffectiveSpeed(set *hooks.Set, env hooks.Env, c *state.Combatant) int {
	chain := hooks.Chain{Base: float64(c.EffectiveStat(content.StatSpeed)), Steps: set.SpeedSteps(env, c)}
	return int(chain.Result())
}

// MovePriority is the move's bracket plus standing modifiers
func MovePriority(set *hooks.Set, env hooks.Env, c *state.Combatant, move *content.Move) int {
	return move.Priority + set.PriorityBonus(env, c, move)
}
