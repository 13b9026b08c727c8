package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
	journalKey           = "audit:journal"
	defaultJournalLength = 10000
)

// appendJournalScript pushes one entry and trims the list to its newest ARGV[2] items.
var appendJournalScript = redis.NewScript(`
local key = KEYS[1]
local entry = ARGV[1]
local limit = tonumber(ARGV[2])

redis.call('RPUSH', key, entry)
local length = redis.call('LLEN', key)
if length > limit then
	redis.call('LTRIM', key, length - limit, -1)
end

return length
`)

type RedisAdapter struct {
	client        *redis.Client
	journalLength int
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, journalLength: defaultJournalLength}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func (r *RedisAdapter) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(NewEntryRecord(entry))
	if err != nil {
		return err
	}

	return appendJournalScript.Run(ctx, r.client, []string{journalKey}, payload, r.journalLength).Err()
}

// RecentEntries returns up to n of the newest exported entries, oldest first.
func (r *RedisAdapter) RecentEntries(ctx context.Context, n int) ([]EntryRecord, error) {
	raw, err := r.client.LRange(ctx, journalKey, int64(-n), -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]EntryRecord, 0, len(raw))
	for _, s := range raw {
		var rec EntryRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
