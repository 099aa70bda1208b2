package v1alpha1

import (
	"bytes"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
)

// Seeds travel as strings because Struct numbers are doubles.

// StartBattleRequest starts a battle
type StartBattleRequest struct {
	Format  engine.Format    `json:"format"`
	Seed    int64            `json:"seed,string,omitempty"`
	Rules   pipeline.Rules   `json:"rules"`
	Parties [][]state.Member `json:"parties"`
}

// StartBattleResponse is the battle waiting on its first turn
type StartBattleResponse struct {
	BattleID string           `json:"battle_id"`
	Snapshot *engine.Snapshot `json:"snapshot"`
	Requests []engine.Request `json:"requests"`
	Effects  []state.Record   `json:"effects"`
}

// SubmitActionsRequest submits choices for the pending turn
type SubmitActionsRequest struct {
	BattleID string          `json:"battle_id"`
	Actions  []engine.Action `json:"actions"`
	Defer    bool            `json:"defer,omitempty"`
}

// SubmitActionsResponse reports the result of a submission
type SubmitActionsResponse struct {
	Resolved bool             `json:"resolved"`
	Snapshot *engine.Snapshot `json:"snapshot"`
	Requests []engine.Request `json:"requests"`
	Effects  []state.Record   `json:"effects"`
}

// BattleRequest names one battle
type BattleRequest struct {
	BattleID string `json:"battle_id"`
}

// BattleLog is an engine log with its seed as a string
type BattleLog struct {
	*engine.Log
	Seed int64 `json:"seed,string"`
}

// GetBattleResponse is the current view of a battle
type GetBattleResponse struct {
	Snapshot *engine.Snapshot `json:"snapshot"`
	Requests []engine.Request `json:"requests"`
	Log      *BattleLog       `json:"log"`
}

// ListBattlesRequest pages stored battles
type ListBattlesRequest struct {
	Limit int `json:"limit,omitempty"`
}

// BattleSummary is one stored battle
type BattleSummary struct {
	BattleID  string        `json:"battle_id"`
	Format    engine.Format `json:"format"`
	Turns     int           `json:"turns"`
	Ended     bool          `json:"ended"`
	Winner    int           `json:"winner"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ListBattlesResponse lists stored battles, newest first
type ListBattlesResponse struct {
	Battles []BattleSummary `json:"battles"`
}

// RunUntilPhaseRequest pauses a battle before a phase kind
type RunUntilPhaseRequest struct {
	BattleID string `json:"battle_id"`
	Phase    string `json:"phase"`
}

// RunUntilPhaseResponse reports where the battle stopped
type RunUntilPhaseResponse struct {
	Reached   bool             `json:"reached"`
	NextPhase string           `json:"next_phase"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Effects   []state.Record   `json:"effects"`
}

// PreviewEffectivenessRequest sizes up a target
type PreviewEffectivenessRequest struct {
	BattleID   string `json:"battle_id"`
	AttackerID string `json:"attacker_id"`
	TargetID   string `json:"target_id"`
}

// PreviewEffectivenessResponse ranks the attacker's moves
type PreviewEffectivenessResponse struct {
	Estimates []*engine.Estimate `json:"estimates"`
}

// ReplayBattleResponse is a stored battle played back
type ReplayBattleResponse struct {
	Snapshot *engine.Snapshot `json:"snapshot"`
	Effects  []state.Record   `json:"effects"`
	Ended    bool             `json:"ended"`
	Winner   int              `json:"winner"`
}

// OfferDarkDealRequest offers a Dark Deal to a run
type OfferDarkDealRequest struct {
	Wave       int                      `json:"wave"`
	Party      []encounters.PartyMember `json:"party"`
	SingleType content.Type             `json:"single_type,omitempty"`
}

// OfferDarkDealResponse is the offered encounter
type OfferDarkDealResponse struct {
	EncounterID  string             `json:"encounter_id"`
	Options      []encounter.Option `json:"options"`
	CatchAllowed bool               `json:"catch_allowed"`
}

// ResolveDarkDealRequest picks an option
type ResolveDarkDealRequest struct {
	EncounterID string           `json:"encounter_id"`
	Option      encounter.Option `json:"option"`
	Seed        int64            `json:"seed,string,omitempty"`
}

// ResolveDarkDealResponse is the outcome of the deal
type ResolveDarkDealResponse struct {
	Status  encounters.Status           `json:"status"`
	Party   []encounters.PartyMember    `json:"party"`
	Payload *encounters.DarkDealPayload `json:"payload,omitempty"`
	Rewards []encounter.Reward          `json:"rewards,omitempty"`
	Battle  *StartBattleResponse        `json:"battle,omitempty"`
}

// Decode converts a Struct message into v. Unknown fields are rejected.
func Decode(msg *structpb.Struct, v any) error {
	if msg == nil {
		return errors.InvalidArgument("request is required")
	}
	data, err := protojson.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidArgumentf("malformed request: %v", err)
	}
	return nil
}

// Encode converts v into a Struct message
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, "failed to convert response")
	}
	return out, nil
}
