package simulate

import (
	"fmt"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Describe renders an effect record as one line of battle text
func Describe(rec state.Record) string {
	prefix := fmt.Sprintf("[t%d #%d]", rec.Turn, rec.Seq)
	return prefix + " " + describeEffect(rec.Effect)
}

func describeEffect(e state.Effect) string {
	switch v := e.(type) {
	case state.MoveUsed:
		return fmt.Sprintf("%s used %s", v.Actor, content.DisplayName(v.Move))
	case state.MoveFailed:
		return fmt.Sprintf("%s's %s failed (%s)", v.Actor, content.DisplayName(v.Move), v.Reason)
	case state.Damage:
		text := fmt.Sprintf("%s took %d damage from %s", v.Target, v.Amount, content.DisplayName(v.Cause))
		if v.Critical {
			text += ", a critical hit"
		}
		switch {
		case v.Effectiveness > 1:
			text += ", super effective"
		case v.Effectiveness > 0 && v.Effectiveness < 1:
			text += ", not very effective"
		}
		return text
	case state.Heal:
		return fmt.Sprintf("%s restored %d HP with %s", v.Target, v.Amount, content.DisplayName(v.Cause))
	case state.Faint:
		return fmt.Sprintf("%s fainted", v.Target)
	case state.StatusApplied:
		return fmt.Sprintf("%s is now %s", v.Target, v.Status)
	case state.StatusCured:
		return fmt.Sprintf("%s is no longer %s", v.Target, v.Status)
	case state.StageChanged:
		return fmt.Sprintf("%s %s %+d", v.Target, v.Stat, v.Delta)
	case state.TerrainChanged:
		return fmt.Sprintf("terrain is now %s", v.Terrain)
	case state.WeatherChanged:
		return fmt.Sprintf("weather is now %s", v.Weather)
	case state.AbilityChanged:
		return fmt.Sprintf("%s's ability became %s", v.Target, content.DisplayName(v.To))
	case state.AbilitySuppressed:
		return fmt.Sprintf("%s's ability was suppressed", v.Target)
	case state.IllusionActivated:
		return fmt.Sprintf("%s appears as %s", v.Target, content.DisplayName(v.Donor.SpeciesID))
	case state.IllusionBroken:
		return fmt.Sprintf("%s's illusion wore off (%s)", v.Target, v.Reason)
	case state.SwitchedIn:
		return fmt.Sprintf("%s was sent out", v.Target)
	case state.SwitchedOut:
		return fmt.Sprintf("%s was withdrawn", v.Target)
	case state.ItemConsumed:
		return fmt.Sprintf("%s used up its %s", v.Target, content.DisplayName(v.Item))
	case state.TurnEnded:
		return fmt.Sprintf("turn %d ended", v.Turn)
	case state.BattleEnded:
		if v.Winner < 0 {
			return "the battle ended in a draw"
		}
		return fmt.Sprintf("side %d won the battle", v.Winner)
	case nil:
		return "nothing happened"
	}
	return fmt.Sprintf("%s %+v", e.Kind(), e)
}
