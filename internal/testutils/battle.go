package testutils

import (
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Member builds a party member with the given moves
func Member(id, species string, level int, moves ...string) state.Member {
	return state.Member{ID: id, Species: species, Level: level, Moves: moves}
}

// SinglesParties is a zoroark lead backed by axew against a lone snorlax
func SinglesParties() [][]state.Member {
	return [][]state.Member{
		{
			Member("p1a", "zoroark", 50, "night_slash", "flamethrower", "swords_dance"),
			Member("p1b", "axew", 50, "dragon_claw", "tackle"),
		},
		{
			Member("p2a", "snorlax", 50, "tackle", "psychic"),
		},
	}
}

// SinglesLog is a replay log with no turns played
func SinglesLog(seed int64) *engine.Log {
	return &engine.Log{
		Seed:    seed,
		Format:  engine.FormatSingles,
		Rules:   pipeline.Rules{DisableCrits: true},
		Parties: SinglesParties(),
	}
}

// MoveTurn is a turn where each listed combatant uses its move on the first foe
func MoveTurn(turn int, moves map[string]string) engine.TurnLog {
	out := engine.TurnLog{Turn: turn}
	for _, id := range []string{"p1a", "p1b", "p2a"} {
		if moveID, ok := moves[id]; ok {
			out.Actions = append(out.Actions, engine.Action{CombatantID: id, Kind: engine.ActionMove, MoveID: moveID, TargetSlot: -1})
		}
	}
	return out
}
