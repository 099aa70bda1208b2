package encounters

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*EncounterData
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*EncounterData),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

func copyMember(m state.Member) state.Member {
	m.Items = append([]state.HeldItem(nil), m.Items...)
	m.Moves = append([]string(nil), m.Moves...)
	return m
}

func copyParty(party []PartyMember) []PartyMember {
	if party == nil {
		return nil
	}
	out := make([]PartyMember, len(party))
	for i, pm := range party {
		out[i] = PartyMember{Member: copyMember(pm.Member), Fainted: pm.Fainted}
	}
	return out
}

func copyData(d *EncounterData) *EncounterData {
	out := *d
	out.Party = copyParty(d.Party)
	if d.Payload != nil {
		p := *d.Payload
		p.RemovedMember = copyMember(d.Payload.RemovedMember)
		p.RemovedTypes = append([]content.Type(nil), d.Payload.RemovedTypes...)
		p.RemovedItems = append([]state.HeldItem(nil), d.Payload.RemovedItems...)
		out.Payload = &p
	}
	return &out
}

// Save stores an encounter
func (r *InMemoryRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.Data == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.Data.ID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.Data.ID] = copyData(input.Data)

	return &SaveOutput{Success: true}, nil
}

// Get retrieves an encounter by ID
func (r *InMemoryRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.store[input.EncounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	// Return a copy to prevent external modification
	return &GetOutput{Data: copyData(data)}, nil
}

// Update modifies an existing encounter
func (r *InMemoryRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.store[input.EncounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	// Update only what's provided
	if input.Status != "" {
		data.Status = input.Status
	}
	if input.Party != nil {
		data.Party = copyParty(input.Party)
	}
	if input.Payload != nil {
		data.Payload = copyData(&EncounterData{Payload: input.Payload}).Payload
	}
	if input.BattleID != "" {
		data.BattleID = input.BattleID
	}

	return &UpdateOutput{Success: true}, nil
}

// Delete removes an encounter
func (r *InMemoryRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.EncounterID]; !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	delete(r.store, input.EncounterID)

	return &DeleteOutput{Success: true}, nil
}
