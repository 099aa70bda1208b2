package battlelog

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-battle/internal/redis"
)

const (
	battleKeyPrefix = "battlelog:"
	indexKey        = "battlelog:index"
)

// RedisConfig contains configuration for the Redis battle-log repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedis creates a Redis-backed battle-log repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	return &redisRepository{client: cfg.Client, clock: c}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if msg := validateRecord(input.Record); msg != "" {
		return nil, errors.InvalidArgument(msg)
	}
	rec := *input.Record
	rec.Log = input.Record.Log.Clone()
	key := battleKeyPrefix + rec.BattleID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("battle %s already exists", rec.BattleID)
	}

	now := r.clock.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	data, err := json.Marshal(&rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal battle log")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(now.UnixNano()), Member: rec.BattleID})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create battle log")
	}
	return &CreateOutput{Record: &rec}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	rec, err := r.load(ctx, r.client, input.BattleID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Record: rec}, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisRepository) load(ctx context.Context, g getter, battleID string) (*Record, error) {
	data, err := g.Get(ctx, battleKeyPrefix+battleID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("battle %s not found", battleID)
		}
		return nil, errors.Wrapf(err, "failed to get battle log")
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal battle log")
	}
	return &rec, nil
}

// AppendTurn rewrites the record under WATCH so concurrent appends to one
// battle cannot interleave
func (r *redisRepository) AppendTurn(ctx context.Context, input AppendTurnInput) (*AppendTurnOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	key := battleKeyPrefix + input.BattleID

	var out *Record
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		rec, err := r.load(ctx, tx, input.BattleID)
		if err != nil {
			return err
		}
		if !nextTurnOK(rec.Log.Turns, input.Turn) {
			return errors.FailedPreconditionf("turn %d is already stored for battle %s", input.Turn.Turn, input.BattleID)
		}
		rec.Log.Turns = append(rec.Log.Turns, input.Turn)
		rec.Ended, rec.Winner = input.Ended, input.Winner
		rec.UpdatedAt = r.clock.Now()

		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal battle log")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = rec
		return nil
	}, key)
	if err != nil {
		if err == redis.TxFailedErr {
			slog.Warn("Battle log append lost a race", "battle_id", input.BattleID, "turn", input.Turn.Turn)
			return nil, errors.Unavailable("battle log was modified concurrently")
		}
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to append turn")
	}
	return &AppendTurnOutput{Record: out}, nil
}

// SetResult rewrites the outcome under the same WATCH as AppendTurn
func (r *redisRepository) SetResult(ctx context.Context, input SetResultInput) (*SetResultOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	key := battleKeyPrefix + input.BattleID

	var out *Record
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		rec, err := r.load(ctx, tx, input.BattleID)
		if err != nil {
			return err
		}
		rec.Ended, rec.Winner = input.Ended, input.Winner
		rec.UpdatedAt = r.clock.Now()

		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal battle log")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = rec
		return nil
	}, key)
	if err != nil {
		if err == redis.TxFailedErr {
			slog.Warn("Battle result update lost a race", "battle_id", input.BattleID)
			return nil, errors.Unavailable("battle log was modified concurrently")
		}
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to set battle result")
	}
	return &SetResultOutput{Record: out}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument(errBattleIDEmpty)
	}
	key := battleKeyPrefix + input.BattleID

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, key)
	pipe.ZRem(ctx, indexKey, input.BattleID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete battle log")
	}
	if del.Val() == 0 {
		return nil, errors.NotFoundf("battle %s not found", input.BattleID)
	}
	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	ids, err := r.client.ZRevRange(ctx, indexKey, 0, int64(listLimit(input.Limit)-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list battle logs")
	}
	if len(ids) == 0 {
		return &ListOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = battleKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load battle logs")
	}

	out := &ListOutput{}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			slog.Warn("Battle log index points at a missing key", "battle_id", ids[i])
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal battle log %s", ids[i])
		}
		out.Records = append(out.Records, &rec)
	}
	return out, nil
}
