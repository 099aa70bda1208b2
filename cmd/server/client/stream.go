package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Print a battle's effects as they happen",
	Long:  `Follow a battle and print each effect record until the server ends the stream or you interrupt it.`,
	RunE:  runStream,
}

func init() {
	requireBattleID(streamCmd)
}

func runStream(_ *cobra.Command, _ []string) error {
	in, err := v1alpha1.Encode(&v1alpha1.BattleRequest{BattleID: battleID})
	if err != nil {
		return err
	}

	client, cleanup, err := createBattleClient()
	if err != nil {
		return err
	}
	defer cleanup()

	// no request timeout; the stream lives as long as the battle
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	stream, err := client.StreamEffects(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to stream effects: %w", err)
	}
	if _, err := stream.Header(); err != nil {
		return fmt.Errorf("failed to stream effects: %w", err)
	}
	fmt.Printf("Following battle %s\n", battleID)

	for {
		msg, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream ended: %w", err)
		}
		if err := printMessage(msg); err != nil {
			return err
		}
	}
}
