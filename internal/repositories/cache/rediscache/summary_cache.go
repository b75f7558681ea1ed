// Package rediscache caches availability summaries in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix        = "bbms:availability:summary:"
	generationPrefix = "bbms:availability:generation:"
	epochKey         = "bbms:availability:epoch"
)

// setIfCurrent writes KEYS[1] only while KEYS[2] (scope generation) and
// KEYS[3] (epoch) still hold ARGV[1] and ARGV[2]. Missing counters read as 0.
const setIfCurrent = `
local gen = redis.call('GET', KEYS[2]) or '0'
local epoch = redis.call('GET', KEYS[3]) or '0'
if gen ~= ARGV[1] or epoch ~= ARGV[2] then
  return 0
end
if tonumber(ARGV[4]) > 0 then
  redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
else
  redis.call('SET', KEYS[1], ARGV[3])
end
return 1
`

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a summary cache. Entries also expire after ttl as a backstop.
func NewSummaryCache(client *redis.Client, ttl time.Duration) portsrepo.AvailabilitySummaryCache {
	return &summaryCache{client: client, ttl: ttl}
}

var _ portsrepo.AvailabilitySummaryCache = (*summaryCache)(nil)

func scopeName(scope string) string {
	if scope == "" {
		return domain.GlobalScope
	}
	return scope
}

// SummaryKey is the Redis key holding a scope's summary.
func SummaryKey(scope string) string {
	return keyPrefix + scopeName(scope)
}

// GenerationKey is the Redis counter bumped whenever a scope's summary is invalidated.
func GenerationKey(scope string) string {
	return generationPrefix + scopeName(scope)
}

func (c *summaryCache) GetSummary(ctx context.Context, scope string) (*domain.AvailabilitySummary, bool, error) {
	raw, err := c.client.Get(ctx, SummaryKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary domain.AvailabilitySummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return &summary, true, nil
}

func (c *summaryCache) Version(ctx context.Context, scope string) (portsrepo.SummaryVersion, error) {
	vals, err := c.client.MGet(ctx, GenerationKey(scope), epochKey).Result()
	if err != nil {
		return portsrepo.SummaryVersion{}, fmt.Errorf("failed to read summary generation: %w", err)
	}
	if len(vals) != 2 {
		return portsrepo.SummaryVersion{}, fmt.Errorf("unexpected generation reply of length %d", len(vals))
	}
	gen, err := parseCounter(vals[0])
	if err != nil {
		return portsrepo.SummaryVersion{}, err
	}
	epoch, err := parseCounter(vals[1])
	if err != nil {
		return portsrepo.SummaryVersion{}, err
	}
	return portsrepo.SummaryVersion{Scope: gen, Epoch: epoch}, nil
}

func parseCounter(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed summary generation %q: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected summary generation type %T", v)
	}
}

func (c *summaryCache) SetSummary(ctx context.Context, summary domain.AvailabilitySummary, version portsrepo.SummaryVersion) (bool, error) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return false, fmt.Errorf("failed to encode summary: %w", err)
	}
	keys := []string{SummaryKey(summary.Scope), GenerationKey(summary.Scope), epochKey}
	stored, err := c.client.Eval(ctx, setIfCurrent, keys,
		strconv.FormatInt(version.Scope, 10),
		strconv.FormatInt(version.Epoch, 10),
		string(raw),
		strconv.FormatInt(c.ttl.Milliseconds(), 10),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to cache summary: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps generations before deleting so an in-flight reader holding
// the old generation cannot write its summary back.
func (c *summaryCache) Invalidate(ctx context.Context, scopes ...string) error {
	if len(scopes) == 0 {
		return nil
	}
	keys := make([]string, len(scopes))
	for i, scope := range scopes {
		if err := c.client.Incr(ctx, GenerationKey(scope)).Err(); err != nil {
			return fmt.Errorf("failed to bump summary generation: %w", err)
		}
		keys[i] = SummaryKey(scope)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached summaries: %w", err)
	}
	return nil
}

func (c *summaryCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, epochKey).Err(); err != nil {
		return fmt.Errorf("failed to bump summary epoch: %w", err)
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cached summaries: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate cached summaries: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
