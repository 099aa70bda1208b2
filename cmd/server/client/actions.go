package client

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// ParseAction reads "id:move:move_id[:slot]" or "id:switch:bench_id"
func ParseAction(spec string) (engine.Action, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || parts[0] == "" || parts[2] == "" {
		return engine.Action{}, errors.InvalidArgumentf("malformed action %q", spec)
	}

	act := engine.Action{CombatantID: parts[0], TargetSlot: -1}
	switch engine.ActionKind(parts[1]) {
	case engine.ActionMove:
		if len(parts) > 4 {
			return engine.Action{}, errors.InvalidArgumentf("malformed action %q", spec)
		}
		act.Kind = engine.ActionMove
		act.MoveID = parts[2]
		if len(parts) == 4 {
			slot, err := strconv.Atoi(parts[3])
			if err != nil || slot < 0 {
				return engine.Action{}, errors.InvalidArgumentf("bad target slot in %q", spec)
			}
			act.TargetSlot = slot
		}
	case engine.ActionSwitch:
		if len(parts) != 3 {
			return engine.Action{}, errors.InvalidArgumentf("malformed action %q", spec)
		}
		act.Kind = engine.ActionSwitch
		act.SwitchTo = parts[2]
	default:
		return engine.Action{}, errors.InvalidArgumentf("unknown action kind %q in %q", parts[1], spec)
	}
	return act, nil
}
