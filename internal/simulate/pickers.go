package simulate

import (
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// FirstLegal sends in the first bench member when a switch is forced and
// otherwise uses the first known move on the first live foe
var FirstLegal Picker = PickerFunc(firstLegal)

// BestEstimate uses the move the attacker's side rates highest against the
// first live foe. Ratings come from Preview, so a disguised foe is judged
// by its apparent types.
var BestEstimate Picker = PickerFunc(bestEstimate)

func firstLegal(_ *engine.Battle, req engine.Request) (engine.Action, error) {
	if req.MustSwitch || len(req.Moves) == 0 {
		if len(req.Switches) == 0 {
			return engine.Action{}, errors.FailedPreconditionf("%s has no legal action", req.CombatantID)
		}
		return engine.Action{CombatantID: req.CombatantID, Kind: engine.ActionSwitch, SwitchTo: req.Switches[0], TargetSlot: -1}, nil
	}
	return engine.Action{CombatantID: req.CombatantID, Kind: engine.ActionMove, MoveID: req.Moves[0], TargetSlot: -1}, nil
}

func bestEstimate(b *engine.Battle, req engine.Request) (engine.Action, error) {
	if req.MustSwitch || len(req.Moves) == 0 {
		return firstLegal(b, req)
	}
	foe := firstLiveFoe(b.Snapshot(), req.Side)
	if foe == nil {
		return firstLegal(b, req)
	}
	estimates, err := b.PreviewAll(req.CombatantID, foe.ID)
	if err != nil || len(estimates) == 0 {
		return firstLegal(b, req)
	}
	return engine.Action{CombatantID: req.CombatantID, Kind: engine.ActionMove, MoveID: estimates[0].MoveID, TargetSlot: foe.Slot}, nil
}

func firstLiveFoe(snap *engine.Snapshot, side int) *engine.CombatantSnapshot {
	for _, s := range snap.Sides {
		if s.Index == side {
			continue
		}
		for i := range s.Party {
			c := &s.Party[i]
			if c.OnField && !c.Fainted {
				return c
			}
		}
	}
	return nil
}
