// Package cache keeps generated quizzes around long enough to grade answers
// against them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	redisv9 "github.com/redis/go-redis/v9"

	"studybuddy/internal/model"
)

const defaultQuizTTL = 24 * time.Hour

func quizKey(id string) string {
	return "studybuddy:quiz:" + id
}

// RedisQuizStore stores quizzes as JSON strings with a TTL.
type RedisQuizStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisQuizStore(client *redisv9.Client, ttl time.Duration) *RedisQuizStore {
	if ttl <= 0 {
		ttl = defaultQuizTTL
	}
	return &RedisQuizStore{client: client, ttl: ttl}
}

func (s *RedisQuizStore) Save(ctx context.Context, quiz *model.Quiz) error {
	payload, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz failed: %w", err)
	}
	if err := s.client.Set(ctx, quizKey(quiz.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set quiz failed: %w", err)
	}
	return nil
}

func (s *RedisQuizStore) Get(ctx context.Context, id string) (*model.Quiz, bool, error) {
	raw, err := s.client.Get(ctx, quizKey(id)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get quiz failed: %w", err)
	}

	var quiz model.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached quiz failed: %w", err)
	}
	return &quiz, true, nil
}

// MemoryQuizStore is the single-process fallback used when Redis is off.
type MemoryQuizStore struct {
	items *gocache.Cache
}

func NewMemoryQuizStore(ttl time.Duration) *MemoryQuizStore {
	if ttl <= 0 {
		ttl = defaultQuizTTL
	}
	return &MemoryQuizStore{items: gocache.New(ttl, 10*time.Minute)}
}

func (s *MemoryQuizStore) Save(_ context.Context, quiz *model.Quiz) error {
	s.items.SetDefault(quizKey(quiz.ID), quiz)
	return nil
}

func (s *MemoryQuizStore) Get(_ context.Context, id string) (*model.Quiz, bool, error) {
	v, ok := s.items.Get(quizKey(id))
	if !ok {
		return nil, false, nil
	}
	quiz, ok := v.(*model.Quiz)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached value %T for quiz %s", v, id)
	}
	return quiz, true, nil
}
