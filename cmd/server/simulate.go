package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/roster"
	"github.com/KirkDiggler/rpg-battle/internal/simulate"
	"github.com/KirkDiggler/rpg-battle/internal/telemetry"
)

var (
	rosterPath string
	simSeed    int64
	simAI      string
	maxTurns   int
	jsonOut    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a battle offline",
	Long: `Play a battle from a roster file with every side picked by a simple
policy, printing each effect as it happens. Without --roster the built-in
demo roster is used.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&rosterPath, "roster", "", "roster YAML file (defaults to the built-in demo)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "override the roster seed")
	simulateCmd.Flags().StringVar(&simAI, "ai", "best", "move policy for every side: first or best")
	simulateCmd.Flags().IntVar(&maxTurns, "max-turns", simulate.DefaultMaxTurns, "stop after this many turns")
	simulateCmd.Flags().BoolVar(&jsonOut, "json", false, "print effect records as JSON lines")
}

func pickerFor(name string) (simulate.Picker, error) {
	switch name {
	case "first":
		return simulate.FirstLegal, nil
	case "best":
		return simulate.BestEstimate, nil
	default:
		return nil, errors.InvalidArgumentf("unknown ai %q, want first or best", name)
	}
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	file := roster.Default()
	if rosterPath != "" {
		var err error
		file, err = roster.Load(rosterPath)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("seed") {
		file.Seed = simSeed
	}
	battleCfg := file.BattleConfig()
	if cfg.DisableCrits {
		battleCfg.Rules.DisableCrits = true
	}

	picker, err := pickerFor(simAI)
	if err != nil {
		return err
	}
	pickers := make([]simulate.Picker, len(battleCfg.Parties))
	for i := range pickers {
		pickers[i] = picker
	}

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	eng, err := engine.New(&engine.Config{
		Catalog: catalog,
		Tracer:  telemetry.Tracer("simulate"),
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	var writeErr error
	onEffect := func(rec state.Record) {
		if jsonOut {
			if err := enc.Encode(rec); err != nil && writeErr == nil {
				writeErr = err
			}
			return
		}
		fmt.Println(simulate.Describe(rec))
	}

	result, err := simulate.Run(cmd.Context(), &simulate.Config{
		Engine:   eng,
		Battle:   battleCfg,
		Pickers:  pickers,
		MaxTurns: maxTurns,
		OnEffect: onEffect,
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write effects: %w", writeErr)
	}
	if jsonOut {
		return nil
	}

	fmt.Printf("\nSeed: %d\n", result.Log.Seed)
	fmt.Printf("Turns: %d\n", result.Turns)
	switch {
	case !result.Ended:
		fmt.Println("Result: unfinished")
	case result.Winner < 0:
		fmt.Println("Result: draw")
	default:
		fmt.Printf("Result: side %d wins\n", result.Winner+1)
	}
	return nil
}
