// Package client provides commands that drive a running battle server
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration

	// Shared by the commands that address one battle
	battleID string
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Drive a running battle server",
	Long:  `Client commands make real gRPC requests and print the responses as JSON.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(startCmd)
	ClientCmd.AddCommand(submitCmd)
	ClientCmd.AddCommand(getCmd)
	ClientCmd.AddCommand(listCmd)
	ClientCmd.AddCommand(runUntilCmd)
	ClientCmd.AddCommand(previewCmd)
	ClientCmd.AddCommand(replayCmd)
	ClientCmd.AddCommand(streamCmd)
	ClientCmd.AddCommand(darkDealCmd)
}

func requireBattleID(cmd *cobra.Command) {
	cmd.Flags().StringVar(&battleID, "battle-id", "", "Battle ID (required)")
	_ = cmd.MarkFlagRequired("battle-id") // nolint:errcheck // safe to ignore in init
}

// createBattleClient creates a battle service client
func createBattleClient() (v1alpha1.BattleServiceClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return v1alpha1.NewBattleServiceClient(conn), cleanup, nil
}

type unaryFunc func(ctx context.Context, client v1alpha1.BattleServiceClient, in *structpb.Struct) (*structpb.Struct, error)

// call encodes req, sends it with the request timeout, and prints the reply
func call(what string, req any, fn unaryFunc) error {
	in, err := v1alpha1.Encode(req)
	if err != nil {
		return err
	}

	client, cleanup, err := createBattleClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := fn(ctx, client, in)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	return printMessage(out)
}

func printMessage(msg *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
