// Package v1alpha1 serves the battle gRPC API
package v1alpha1

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
)

// HandlerConfig holds dependencies for the battle handler
type HandlerConfig struct {
	BattleService    battle.Service
	EncounterService encounter.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.BattleService == nil {
		vb.RequiredField("BattleService")
	}
	if c.EncounterService == nil {
		vb.RequiredField("EncounterService")
	}
	return vb.Build()
}

// Handler implements BattleServiceServer
type Handler struct {
	battleService    battle.Service
	encounterService encounter.Service
}

var _ BattleServiceServer = (*Handler)(nil)

// NewHandler creates a new battle handler
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Handler{
		battleService:    cfg.BattleService,
		encounterService: cfg.EncounterService,
	}, nil
}

func requireField(name, value string) error {
	if value == "" {
		return errors.InvalidArgumentf("%s is required", name)
	}
	return nil
}

func respond(out any) (*structpb.Struct, error) {
	msg, err := Encode(out)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return msg, nil
}

// StartBattle starts a battle from two or more rosters
func (h *Handler) StartBattle(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req StartBattleRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.StartBattle(ctx, &battle.StartBattleInput{
		Format:  req.Format,
		Seed:    req.Seed,
		Rules:   req.Rules,
		Parties: req.Parties,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(startBattleResponse(out))
}

func startBattleResponse(out *battle.StartBattleOutput) *StartBattleResponse {
	return &StartBattleResponse{
		BattleID: out.BattleID,
		Snapshot: out.Snapshot,
		Requests: out.Requests,
		Effects:  out.Effects,
	}
}

// SubmitActions submits choices for the pending turn
func (h *Handler) SubmitActions(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req SubmitActionsRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if len(req.Actions) == 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("actions are required"))
	}

	out, err := h.battleService.SubmitActions(ctx, &battle.SubmitActionsInput{
		BattleID: req.BattleID,
		Actions:  req.Actions,
		Defer:    req.Defer,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&SubmitActionsResponse{
		Resolved: out.Resolved,
		Snapshot: out.Snapshot,
		Requests: out.Requests,
		Effects:  out.Effects,
	})
}

// GetBattle returns the current view of a battle
func (h *Handler) GetBattle(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req BattleRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.GetBattle(ctx, &battle.GetBattleInput{BattleID: req.BattleID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	resp := &GetBattleResponse{Snapshot: out.Snapshot, Requests: out.Requests}
	if out.Log != nil {
		resp.Log = &BattleLog{Log: out.Log, Seed: out.Log.Seed}
	}
	return respond(resp)
}

// ListBattles lists stored battles, newest first
func (h *Handler) ListBattles(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req ListBattlesRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.ListBattles(ctx, &battle.ListBattlesInput{Limit: req.Limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp := &ListBattlesResponse{Battles: make([]BattleSummary, 0, len(out.Battles))}
	for _, rec := range out.Battles {
		summary := BattleSummary{
			BattleID:  rec.BattleID,
			Ended:     rec.Ended,
			Winner:    rec.Winner,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
		if rec.Log != nil {
			summary.Format = rec.Log.Format
			summary.Turns = len(rec.Log.Turns)
		}
		resp.Battles = append(resp.Battles, summary)
	}
	return respond(resp)
}

// RunUntilPhase advances a battle until a phase kind is next
func (h *Handler) RunUntilPhase(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req RunUntilPhaseRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("phase", req.Phase); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.RunUntilPhase(ctx, &battle.RunUntilPhaseInput{
		BattleID: req.BattleID,
		Phase:    req.Phase,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&RunUntilPhaseResponse{
		Reached:   out.Reached,
		NextPhase: out.NextPhase,
		Snapshot:  out.Snapshot,
		Effects:   out.Effects,
	})
}

// PreviewEffectiveness ranks an attacker's moves against a target
func (h *Handler) PreviewEffectiveness(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req PreviewEffectivenessRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.PreviewEffectiveness(ctx, &battle.PreviewEffectivenessInput{
		BattleID:   req.BattleID,
		AttackerID: req.AttackerID,
		TargetID:   req.TargetID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&PreviewEffectivenessResponse{Estimates: out.Estimates})
}

// ReplayBattle plays a stored battle back from its log
func (h *Handler) ReplayBattle(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req BattleRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.battleService.ReplayBattle(ctx, &battle.ReplayBattleInput{BattleID: req.BattleID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&ReplayBattleResponse{
		Snapshot: out.Snapshot,
		Effects:  out.Effects,
		Ended:    out.Ended,
		Winner:   out.Winner,
	})
}

// OfferDarkDeal offers a Dark Deal encounter
func (h *Handler) OfferDarkDeal(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req OfferDarkDealRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.OfferDarkDeal(ctx, &encounter.OfferDarkDealInput{
		Wave:       req.Wave,
		Party:      req.Party,
		SingleType: req.SingleType,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&OfferDarkDealResponse{
		EncounterID:  out.EncounterID,
		Options:      out.Options,
		CatchAllowed: out.CatchAllowed,
	})
}

// ResolveDarkDeal applies the chosen Dark Deal option
func (h *Handler) ResolveDarkDeal(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	var req ResolveDarkDealRequest
	if err := Decode(msg, &req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := requireField("encounter_id", req.EncounterID); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.ResolveDarkDeal(ctx, &encounter.ResolveDarkDealInput{
		EncounterID: req.EncounterID,
		Option:      req.Option,
		Seed:        req.Seed,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	resp := &ResolveDarkDealResponse{
		Status:  out.Status,
		Party:   out.Party,
		Payload: out.Payload,
		Rewards: out.Rewards,
	}
	if out.Battle != nil {
		resp.Battle = startBattleResponse(out.Battle)
	}
	return respond(resp)
}

// StreamEffects sends each effect record of a battle as it is recorded,
// until the client goes away
func (h *Handler) StreamEffects(msg *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	var req BattleRequest
	if err := Decode(msg, &req); err != nil {
		return errors.ToGRPCError(err)
	}
	if err := requireField("battle_id", req.BattleID); err != nil {
		return errors.ToGRPCError(err)
	}

	ctx := stream.Context()
	sub, err := h.battleService.Subscribe(ctx, &battle.SubscribeInput{BattleID: req.BattleID})
	if err != nil {
		return errors.ToGRPCError(err)
	}
	defer sub.Cancel()

	// headers tell the client the subscription is live
	if err := stream.SendHeader(metadata.Pairs("battle-id", req.BattleID)); err != nil {
		return err
	}

	if sub.Ended {
		slog.Debug("Effect stream for ended battle", "battle_id", req.BattleID)
		return nil
	}

	slog.Debug("Effect stream opened", "battle_id", req.BattleID)
	for rec := range sub.Effects {
		out, err := Encode(rec)
		if err != nil {
			return errors.ToGRPCError(err)
		}
		if err := stream.Send(out); err != nil {
			return err
		}
		if rec.Kind == state.KindBattleEnded {
			break
		}
	}
	slog.Debug("Effect stream closed", "battle_id", req.BattleID)
	return nil
}
