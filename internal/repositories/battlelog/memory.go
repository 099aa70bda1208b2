package battlelog

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string]*Record
}

// NewInMemory creates a new in-memory repository. A nil clock uses wall time.
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{
		clock: c,
		store: make(map[string]*Record),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

func copyRecord(rec *Record) *Record {
	out := *rec
	out.Log = rec.Log.Clone()
	return &out
}

// Create stores a new battle
func (r *InMemoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if msg := validateRecord(input.Record); msg != "" {
		return nil, errors.InvalidArgument(msg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.Record.BattleID]; exists {
		return nil, errors.AlreadyExistsf("battle %s already exists", input.Record.BattleID)
	}

	rec := copyRecord(input.Record)
	now := r.clock.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.store[rec.BattleID] = rec

	return &CreateOutput{Record: copyRecord(rec)}, nil
}

// Get retrieves a battle by ID
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.store[input.BattleID]
	if !exists {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	return &GetOutput{Record: copyRecord(rec)}, nil
}

// AppendTurn adds a resolved turn to a stored battle
func (r *InMemoryRepository) AppendTurn(_ context.Context, input AppendTurnInput) (*AppendTurnOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.store[input.BattleID]
	if !exists {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	if !nextTurnOK(rec.Log.Turns, input.Turn) {
		return nil, errors.FailedPreconditionf("turn %d is already stored for battle %s", input.Turn.Turn, input.BattleID)
	}

	rec.Log.Turns = append(rec.Log.Turns, input.Turn)
	rec.Ended, rec.Winner = input.Ended, input.Winner
	rec.UpdatedAt = r.clock.Now()

	return &AppendTurnOutput{Record: copyRecord(rec)}, nil
}

// SetResult updates the ended status and winner of a stored battle
func (r *InMemoryRepository) SetResult(_ context.Context, input SetResultInput) (*SetResultOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.store[input.BattleID]
	if !exists {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	rec.Ended, rec.Winner = input.Ended, input.Winner
	rec.UpdatedAt = r.clock.Now()

	return &SetResultOutput{Record: copyRecord(rec)}, nil
}

// Delete removes a battle
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.BattleID]; !exists {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	delete(r.store, input.BattleID)
	return &DeleteOutput{}, nil
}

// List returns battles newest first
func (r *InMemoryRepository) List(_ context.Context, input ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Record, 0, len(r.store))
	for _, rec := range r.store {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].BattleID > records[j].BattleID
	})

	limit := min(listLimit(input.Limit), len(records))
	out := &ListOutput{Records: make([]*Record, 0, limit)}
	for _, rec := range records[:limit] {
		out.Records = append(out.Records, copyRecord(rec))
	}
	return out, nil
}
