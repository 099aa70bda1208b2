package errors

import "fmt"

// Metadata keys used by the battle-specific error classes.
const (
	MetaInvariant    = "invariant"
	MetaContentKind  = "content_kind"
	MetaContentID    = "content_id"
	MetaCombatantID  = "combatant_id"
	MetaRejectReason = "reason"
)

// Invariant reports a broken state-model invariant. These are programmer
// errors: the caller must abort the operation instead of continuing.
func Invariant(message string) *Error {
	return Internal(message).WithMeta(MetaInvariant, true)
}

// Invariantf creates an invariant error with formatted message
func Invariantf(format string, args ...interface{}) *Error {
	return Invariant(fmt.Sprintf(format, args...))
}

// MissingContent reports a catalog lookup with no definition.
func MissingContent(kind, id string) *Error {
	return NotFoundf("%s %q has no definition", kind, id).
		WithMeta(MetaContentKind, kind).
		WithMeta(MetaContentID, id)
}

// IllegalAction rejects a submitted action before it reaches the phase queue.
func IllegalAction(combatantID, reason string) *Error {
	return InvalidArgumentf("illegal action for %s: %s", combatantID, reason).
		WithMeta(MetaCombatantID, combatantID).
		WithMeta(MetaRejectReason, reason)
}
