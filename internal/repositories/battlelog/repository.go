// Package battlelog stores replay logs of battles, one record per battle
// with its turns appended as they resolve.
package battlelog

//go:generate mockgen -destination=mock/mock_repository.go -package=battlelogmock github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
)

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 50

// Error messages shared by the implementations
const (
	errRecordNil     = "record cannot be nil"
	errBattleIDEmpty = "battle ID cannot be empty"
	errLogNil        = "log cannot be nil"
)

// Record is one stored battle
type Record struct {
	BattleID  string      `json:"battle_id"`
	Log       *engine.Log `json:"log"`
	Ended     bool        `json:"ended"`
	Winner    int         `json:"winner"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateInput contains the battle to store
type CreateInput struct {
	Record *Record
}

// CreateOutput contains the stored battle
type CreateOutput struct {
	Record *Record
}

// GetInput identifies a battle
type GetInput struct {
	BattleID string
}

// GetOutput contains the battle
type GetOutput struct {
	Record *Record
}

// AppendTurnInput adds one resolved turn
type AppendTurnInput struct {
	BattleID string
	Turn     engine.TurnLog
	Ended    bool
	Winner   int
}

// AppendTurnOutput contains the updated battle
type AppendTurnOutput struct {
	Record *Record
}

// SetResultInput records how a battle stands without adding a turn. A turn
// started by one call and finished by a later one ends the battle this way.
type SetResultInput struct {
	BattleID string
	Ended    bool
	Winner   int
}

// SetResultOutput contains the updated battle
type SetResultOutput struct {
	Record *Record
}

// DeleteInput identifies a battle to remove
type DeleteInput struct {
	BattleID string
}

// DeleteOutput is empty on success
type DeleteOutput struct{}

// ListInput pages battles newest first
type ListInput struct {
	Limit int
}

// ListOutput contains the battles
type ListOutput struct {
	Records []*Record
}

// Repository persists battle logs
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	AppendTurn(ctx context.Context, input AppendTurnInput) (*AppendTurnOutput, error)
	SetResult(ctx context.Context, input SetResultInput) (*SetResultOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

func validateRecord(rec *Record) string {
	switch {
	case rec == nil:
		return errRecordNil
	case rec.BattleID == "":
		return errBattleIDEmpty
	case rec.Log == nil:
		return errLogNil
	}
	return ""
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// nextTurnOK reports whether turn may follow what is already stored
func nextTurnOK(turns []engine.TurnLog, turn engine.TurnLog) bool {
	if len(turns) == 0 {
		return true
	}
	return turn.Turn > turns[len(turns)-1].Turn
}
