package battlelog

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog/migrations"
)

const migrationTable = "schema_migrations"

// SQLiteConfig contains configuration for the SQLite battle-log repository
type SQLiteConfig struct {
	Path  string
	Clock clock.Clock
}

// Validate validates the SQLiteConfig
func (cfg *SQLiteConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return errors.InvalidArgument("path cannot be empty")
	}
	return nil
}

// SQLiteRepository stores battle logs in a single SQLite file
type SQLiteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens the database at cfg.Path and applies pending migrations
func OpenSQLite(cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dsn := filepath.Clean(cfg.Path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite store")
	}
	// one connection keeps pragmas and transactions on the same handle
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to ping sqlite store")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to enable foreign keys")
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to migrate sqlite store")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	return &SQLiteRepository{db: db, clock: c}, nil
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// applyMigrations runs each embedded file once, recording it in schema_migrations
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)", migrationTable)
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE name = ?", migrationTable), name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		up := upSection(string(content))

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (name, applied_at) VALUES (?, ?)", migrationTable),
			name, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	start := strings.Index(content, up)
	if start == -1 {
		return content
	}
	content = content[start+len(up):]
	if end := strings.Index(content, down); end != -1 {
		content = content[:end]
	}
	return content
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !stderrors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Create stores a new battle and any turns already in its log
func (r *SQLiteRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if msg := validateRecord(input.Record); msg != "" {
		return nil, errors.InvalidArgument(msg)
	}
	rec := copyRecord(input.Record)
	now := r.clock.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now

	rules, err := json.Marshal(rec.Log.Rules)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal rules")
	}
	parties, err := json.Marshal(rec.Log.Parties)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal parties")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO battles (battle_id, seed, format, rules_json, parties_json, ended, winner, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BattleID, rec.Log.Seed, string(rec.Log.Format), string(rules), string(parties),
		boolToInt(rec.Ended), rec.Winner, toMillis(now), toMillis(now),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, errors.AlreadyExistsf("battle %s already exists", rec.BattleID)
		}
		return nil, errors.Wrapf(err, "failed to insert battle")
	}
	for _, turn := range rec.Log.Turns {
		if err := insertTurn(ctx, tx, rec.BattleID, turn); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrapf(err, "failed to commit battle")
	}
	return &CreateOutput{Record: rec}, nil
}

func insertTurn(ctx context.Context, tx *sql.Tx, battleID string, turn engine.TurnLog) error {
	actions, err := json.Marshal(turn.Actions)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal actions")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO battle_turns (battle_id, turn, actions_json) VALUES (?, ?, ?)`,
		battleID, turn.Turn, string(actions),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return errors.FailedPreconditionf("turn %d is already stored for battle %s", turn.Turn, battleID)
		}
		return errors.Wrapf(err, "failed to insert turn")
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SQLiteRepository) load(ctx context.Context, q queryer, battleID string) (*Record, error) {
	rec := &Record{BattleID: battleID, Log: &engine.Log{}}
	var (
		format, rules, parties string
		ended                  int
		createdAt, updatedAt   int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT seed, format, rules_json, parties_json, ended, winner, created_at, updated_at
		 FROM battles WHERE battle_id = ?`, battleID,
	).Scan(&rec.Log.Seed, &format, &rules, &parties, &ended, &rec.Winner, &createdAt, &updatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("battle %s not found", battleID)
		}
		return nil, errors.Wrapf(err, "failed to get battle")
	}
	rec.Log.Format = engine.Format(format)
	rec.Ended = ended != 0
	rec.CreatedAt, rec.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	if err := json.Unmarshal([]byte(rules), &rec.Log.Rules); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal rules")
	}
	if err := json.Unmarshal([]byte(parties), &rec.Log.Parties); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal parties")
	}

	rows, err := q.QueryContext(ctx,
		`SELECT turn, actions_json FROM battle_turns WHERE battle_id = ? ORDER BY turn`, battleID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get turns")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			turn    engine.TurnLog
			actions string
		)
		if err := rows.Scan(&turn.Turn, &actions); err != nil {
			return nil, errors.Wrapf(err, "failed to scan turn")
		}
		if err := json.Unmarshal([]byte(actions), &turn.Actions); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal turn %d", turn.Turn)
		}
		rec.Log.Turns = append(rec.Log.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read turns")
	}
	return rec, nil
}

// Get retrieves a battle by ID
func (r *SQLiteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	rec, err := r.load(ctx, r.db, input.BattleID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Record: rec}, nil
}

// AppendTurn inserts a turn row and updates the outcome in one transaction
func (r *SQLiteRepository) AppendTurn(ctx context.Context, input AppendTurnInput) (*AppendTurnOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var last sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT MAX(turn) FROM battle_turns WHERE battle_id = ?`, input.BattleID).Scan(&last)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read last turn")
	}
	if last.Valid && int64(input.Turn.Turn) <= last.Int64 {
		return nil, errors.FailedPreconditionf("turn %d is already stored for battle %s", input.Turn.Turn, input.BattleID)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE battles SET ended = ?, winner = ?, updated_at = ? WHERE battle_id = ?`,
		boolToInt(input.Ended), input.Winner, toMillis(r.clock.Now()), input.BattleID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update battle")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	if err := insertTurn(ctx, tx, input.BattleID, input.Turn); err != nil {
		return nil, err
	}

	rec, err := r.load(ctx, tx, input.BattleID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrapf(err, "failed to commit turn")
	}
	return &AppendTurnOutput{Record: rec}, nil
}

// SetResult updates the outcome columns only
func (r *SQLiteRepository) SetResult(ctx context.Context, input SetResultInput) (*SetResultOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE battles SET ended = ?, winner = ?, updated_at = ? WHERE battle_id = ?`,
		boolToInt(input.Ended), input.Winner, toMillis(r.clock.Now()), input.BattleID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update battle")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	rec, err := r.load(ctx, r.db, input.BattleID)
	if err != nil {
		return nil, err
	}
	return &SetResultOutput{Record: rec}, nil
}

// Delete removes a battle and its turns
func (r *SQLiteRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM battles WHERE battle_id = ?`, input.BattleID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete battle")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	return &DeleteOutput{}, nil
}

// List returns battles newest first
func (r *SQLiteRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT battle_id FROM battles ORDER BY created_at DESC, battle_id DESC LIMIT ?`, listLimit(input.Limit))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list battles")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, errors.Wrapf(err, "failed to scan battle id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, errors.Wrapf(err, "failed to read battle ids")
	}
	if err := rows.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close rows")
	}

	out := &ListOutput{}
	for _, id := range ids {
		rec, err := r.load(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}
