package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// RedisStore keeps records as JSON in a capped Redis list, newest at the head.
type RedisStore struct {
	client   redis.UniversalClient
	key      string
	capacity int
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, key: o.key, capacity: o.capacity}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Record(ctx context.Context, rec model.EpisodeRecord) error { //nolint:gocritic // hugeParam: marshalled once
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal episode %s: %w", rec.Episode, err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, s.key, data)
		p.LTrim(ctx, s.key, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: record episode %s: %v", ErrUnavailable, rec.Episode, err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, n int) ([]model.EpisodeRecord, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	raw, err := s.client.LRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read episodes: %v", ErrUnavailable, err)
	}

	out := make([]model.EpisodeRecord, 0, len(raw))
	for _, r := range raw {
		var rec model.EpisodeRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			return nil, fmt.Errorf("decode episode: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: count episodes: %v", ErrUnavailable, err)
	}
	return int(n), nil
}
