// Package encounters stores mystery encounters between being offered and
// being resolved.
package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=encountersmock github.com/KirkDiggler/rpg-battle/internal/repositories/encounters Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Status is where an encounter is in its lifecycle
type Status string

// Encounter statuses
const (
	StatusOffered  Status = "offered"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Kind names the encounter
type Kind string

// Known encounter kinds
const (
	KindDarkDeal Kind = "dark_deal"
)

// PartyMember is a roster entry with its standing outside of battle
type PartyMember struct {
	Member  state.Member `json:"member"`
	Fainted bool         `json:"fainted,omitempty"`
}

// DarkDealPayload is what a Dark Deal trade produced
type DarkDealPayload struct {
	RemovedMember state.Member     `json:"removed_member"`
	RemovedTypes  []content.Type   `json:"removed_types"`
	RemovedItems  []state.HeldItem `json:"removed_items,omitempty"`
	BossSpecies   string           `json:"boss_species"`
	Tier          int              `json:"tier"`
}

// EncounterData represents the persistent state of an encounter
type EncounterData struct {
	ID         string
	Kind       Kind
	Status     Status
	Wave       int
	Party      []PartyMember
	SingleType content.Type
	Payload    *DarkDealPayload
	BattleID   string
}

// Repository defines the storage interface for encounters
type Repository interface {
	// Save stores an encounter
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves an encounter by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Update modifies an existing encounter
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Delete removes an encounter
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// SaveInput defines the request for saving an encounter
type SaveInput struct {
	Data *EncounterData
}

// SaveOutput defines the response for saving an encounter
type SaveOutput struct {
	Success bool
}

// GetInput defines the request for retrieving an encounter
type GetInput struct {
	EncounterID string
}

// GetOutput defines the response for retrieving an encounter
type GetOutput struct {
	Data *EncounterData
}

// UpdateInput defines the request for updating an encounter. Nil and zero
// fields are left as they are.
type UpdateInput struct {
	EncounterID string
	Status      Status
	Party       []PartyMember
	Payload     *DarkDealPayload
	BattleID    string
}

// UpdateOutput defines the response for updating an encounter
type UpdateOutput struct {
	Success bool
}

// DeleteInput defines the request for deleting an encounter
type DeleteInput struct {
	EncounterID string
}

// DeleteOutput defines the response for deleting an encounter
type DeleteOutput struct {
	Success bool
}
