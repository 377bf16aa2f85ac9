// Package keys persists operator API keys and usage counters in Redis.
package keys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey           = "apikeys:index"
	keyPrefix          = "apikey:"
	statRequestsKey    = "stats:total_requests"
	statActiveUsersKey = "stats:active_users"
	statRevenueKey     = "stats:total_revenue"
	statHistoryKey     = "stats:history"
)

type APIKey struct {
	ID         string `json:"id" redis:"id"`
	Name       string `json:"name" redis:"name"`
	Key        string `json:"key" redis:"key"`
	CreatedAt  string `json:"created_at" redis:"created_at"`
	Status     string `json:"status" redis:"status"`
	UsageMonth int    `json:"usage_month" redis:"usage_month"`
	UsageLimit int    `json:"usage_limit" redis:"usage_limit"`
}

type Stats struct {
	TotalRequests int              `json:"total_requests"`
	ActiveUsers   int              `json:"active_users"`
	Revenue       float64          `json:"revenue"`
	History       []map[string]any `json:"history"`
}

type Store struct {
	rdb *redis.Client
}

func NewStore(redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{rdb: redis.NewClient(opt)}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// List returns all keys, newest first.
func (s *Store) List(ctx context.Context) ([]APIKey, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list key index: %w", err)
	}

	keys := make([]APIKey, 0, len(ids))
	for _, id := range ids {
		var k APIKey
		if err := s.rdb.HGetAll(ctx, keyPrefix+id).Scan(&k); err != nil {
			return nil, fmt.Errorf("load key %s: %w", id, err)
		}
		if k.ID != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt > keys[j].CreatedAt })
	return keys, nil
}

// Create mints a new key and indexes it.
func (s *Store) Create(ctx context.Context, name string) (APIKey, error) {
	token, err := secureToken()
	if err != nil {
		return APIKey{}, err
	}
	id, err := randomHex(4)
	if err != nil {
		return APIKey{}, err
	}

	k := APIKey{
		ID:         id,
		Name:       name,
		Key:        token,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Status:     "active",
		UsageMonth: 0,
		UsageLimit: 100000,
	}

	fields := map[string]any{
		"id": k.ID, "name": k.Name, "key": k.Key,
		"created_at": k.CreatedAt, "status": k.Status,
		"usage_month": k.UsageMonth, "usage_limit": k.UsageLimit,
	}
	if err := s.rdb.HSet(ctx, keyPrefix+k.ID, fields).Err(); err != nil {
		return APIKey{}, fmt.Errorf("save key: %w", err)
	}
	if err := s.rdb.SAdd(ctx, indexKey, k.ID).Err(); err != nil {
		return APIKey{}, fmt.Errorf("index key: %w", err)
	}
	return k, nil
}

// Revoke flips a key's status; returns false when the key does not exist.
func (s *Store) Revoke(ctx context.Context, id string) (bool, error) {
	exists, err := s.rdb.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("check key: %w", err)
	}
	if exists == 0 {
		return false, nil
	}
	if err := s.rdb.HSet(ctx, keyPrefix+id, "status", "revoked").Err(); err != nil {
		return false, fmt.Errorf("revoke key: %w", err)
	}
	return true, nil
}

// RecordUsage bumps the request/revenue counters for one served turn.
// Best-effort: callers log failures but never fail the turn on them.
func (s *Store) RecordUsage(ctx context.Context, sessionID string, revenue float64) error {
	pipe := s.rdb.Pipeline()
	pipe.Incr(ctx, statRequestsKey)
	pipe.SAdd(ctx, statActiveUsersKey, sessionID)
	if revenue > 0 {
		pipe.IncrByFloat(ctx, statRevenueKey, revenue)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ReadStats pulls the operator counters and the last 7 history snapshots.
func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	var out Stats

	if v, err := s.rdb.Get(ctx, statRequestsKey).Int(); err == nil {
		out.TotalRequests = v
	} else if err != redis.Nil {
		return Stats{}, fmt.Errorf("read total requests: %w", err)
	}

	if v, err := s.rdb.SCard(ctx, statActiveUsersKey).Result(); err == nil {
		out.ActiveUsers = int(v)
	} else if err != redis.Nil {
		return Stats{}, fmt.Errorf("read active users: %w", err)
	}

	if v, err := s.rdb.Get(ctx, statRevenueKey).Float64(); err == nil {
		out.Revenue = v
	} else if err != redis.Nil {
		return Stats{}, fmt.Errorf("read revenue: %w", err)
	}

	raw, err := s.rdb.LRange(ctx, statHistoryKey, 0, 6).Result()
	if err != nil && err != redis.Nil {
		return Stats{}, fmt.Errorf("read history: %w", err)
	}
	out.History = []map[string]any{}
	for _, h := range raw {
		var entry map[string]any
		if err := json.Unmarshal([]byte(h), &entry); err == nil {
			out.History = append(out.History, entry)
		}
	}
	return out, nil
}

func secureToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return "sk_live_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
