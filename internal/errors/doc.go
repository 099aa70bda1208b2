// Package errors provides the structured error type shared by the battle
// engine, its orchestrators, and the transport layer.
//
// Errors carry a Code, a user-facing Message, an optional Cause and a Meta
// map. Codes map onto gRPC and HTTP statuses.
//
// # Battle error classes
//
// Illegal input is rejected before it enters the phase queue:
//
//	return errors.IllegalAction(actorID, "move is not known")
//
// Broken state-model invariants abort the current operation:
//
//	if c.Illusion().Active() {
//	    return errors.Invariantf("combatant %s already has an illusion", c.ID())
//	}
//
// Missing content is reported at the catalog boundary, logged, and replaced
// by a neutral definition. It is never returned to gameplay callers:
//
//	err := errors.MissingContent("move", id)
//
// A move that misses or has no target is not an error at all; the pipeline
// records a MoveFailed effect instead.
//
// # Checking
//
//	if errors.IsInvariant(err) { ... }
//	if errors.IsInvalidArgument(err) { ... }
//	code := errors.GetCode(err)
//
// # Validation
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("battle_id", input.BattleID, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # gRPC
//
// Handlers convert with ToGRPCError; metadata is attached as a
// structpb.Struct detail and recovered by FromGRPCError.
package errors
