package client

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
	"github.com/KirkDiggler/rpg-battle/internal/roster"
)

// clientMethod matches a method expression on BattleServiceClient
type clientMethod func(v1alpha1.BattleServiceClient, context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func method(m clientMethod) unaryFunc {
	return func(ctx context.Context, client v1alpha1.BattleServiceClient, in *structpb.Struct) (*structpb.Struct, error) {
		return m(client, ctx, in)
	}
}

var (
	startRoster string
	startSeed   int64

	actionSpecs []string
	deferTurn   bool

	listLimit int
	phaseKind string

	attackerID string
	targetID   string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a battle from a roster file",
	Long:  `Start a battle from a roster YAML file, or the built-in demo roster when --roster is not set.`,
	RunE:  runStart,
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit actions for the pending turn",
	Long: `Submit one or more actions. Each --action is one of:

  p1a:move:earthquake      move with automatic targeting
  p1a:move:surf:1          move aimed at slot 1
  p1a:switch:p1c           switch to bench member p1c`,
	RunE: runSubmit,
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a battle's state, pending requests, and log",
	RunE:  runGet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored battles, newest first",
	RunE:  runList,
}

var runUntilCmd = &cobra.Command{
	Use:   "run-until",
	Short: "Step a deferred turn up to a phase",
	RunE:  runRunUntil,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Rank an attacker's moves against a target",
	RunE:  runPreview,
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a stored battle from its log",
	RunE:  runReplay,
}

func init() {
	startCmd.Flags().StringVar(&startRoster, "roster", "", "roster YAML file")
	startCmd.Flags().Int64Var(&startSeed, "seed", 0, "override the roster seed")

	requireBattleID(submitCmd)
	submitCmd.Flags().StringArrayVar(&actionSpecs, "action", nil, "action to submit (repeatable)")
	submitCmd.Flags().BoolVar(&deferTurn, "defer", false, "leave a complete turn unresolved for run-until")
	_ = submitCmd.MarkFlagRequired("action") // nolint:errcheck // safe to ignore in init

	requireBattleID(getCmd)
	requireBattleID(replayCmd)

	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum battles to list")

	requireBattleID(runUntilCmd)
	runUntilCmd.Flags().StringVar(&phaseKind, "phase", "", "phase kind to stop before (required)")
	_ = runUntilCmd.MarkFlagRequired("phase") // nolint:errcheck // safe to ignore in init

	requireBattleID(previewCmd)
	previewCmd.Flags().StringVar(&attackerID, "attacker", "", "attacking combatant ID (required)")
	previewCmd.Flags().StringVar(&targetID, "target", "", "target combatant ID (required)")
	_ = previewCmd.MarkFlagRequired("attacker") // nolint:errcheck // safe to ignore in init
	_ = previewCmd.MarkFlagRequired("target")   // nolint:errcheck // safe to ignore in init
}

func runStart(cmd *cobra.Command, _ []string) error {
	file := roster.Default()
	if startRoster != "" {
		var err error
		file, err = roster.Load(startRoster)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("seed") {
		file.Seed = startSeed
	}

	req := &v1alpha1.StartBattleRequest{
		Format:  file.Format,
		Seed:    file.Seed,
		Rules:   file.Rules,
		Parties: file.Parties,
	}
	return call("start battle", req, method(v1alpha1.BattleServiceClient.StartBattle))
}

func runSubmit(_ *cobra.Command, _ []string) error {
	actions := make([]engine.Action, 0, len(actionSpecs))
	for _, spec := range actionSpecs {
		act, err := ParseAction(spec)
		if err != nil {
			return err
		}
		actions = append(actions, act)
	}

	req := &v1alpha1.SubmitActionsRequest{
		BattleID: battleID,
		Actions:  actions,
		Defer:    deferTurn,
	}
	return call("submit actions", req, method(v1alpha1.BattleServiceClient.SubmitActions))
}

func runGet(_ *cobra.Command, _ []string) error {
	return call("get battle", &v1alpha1.BattleRequest{BattleID: battleID}, method(v1alpha1.BattleServiceClient.GetBattle))
}

func runList(_ *cobra.Command, _ []string) error {
	return call("list battles", &v1alpha1.ListBattlesRequest{Limit: listLimit}, method(v1alpha1.BattleServiceClient.ListBattles))
}

func runRunUntil(_ *cobra.Command, _ []string) error {
	req := &v1alpha1.RunUntilPhaseRequest{BattleID: battleID, Phase: phaseKind}
	return call("run battle", req, method(v1alpha1.BattleServiceClient.RunUntilPhase))
}

func runPreview(_ *cobra.Command, _ []string) error {
	req := &v1alpha1.PreviewEffectivenessRequest{
		BattleID:   battleID,
		AttackerID: attackerID,
		TargetID:   targetID,
	}
	return call("preview moves", req, method(v1alpha1.BattleServiceClient.PreviewEffectiveness))
}

func runReplay(_ *cobra.Command, _ []string) error {
	return call("replay battle", &v1alpha1.BattleRequest{BattleID: battleID}, method(v1alpha1.BattleServiceClient.ReplayBattle))
}
