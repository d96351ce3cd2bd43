package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"forkthisidea/bot/internal/idea"
)

// ideaRecord is the stored shape of an idea. The ID lives in the hash field
// name, not the value, so the layout stays a plain mapping from idea ID to
// record under one collection.
type ideaRecord struct {
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Timestamp   int64      `json:"timestamp"`
	Votes       idea.Votes `json:"votes"`
}

func (r ideaRecord) toIdea(id string) idea.Idea {
	return idea.Idea{
		ID:          id,
		UserID:      r.UserID,
		UserName:    r.UserName,
		Title:       r.Title,
		Description: r.Description,
		Timestamp:   r.Timestamp,
		Votes:       r.Votes,
	}
}

// RedisStore keeps all ideas in a single hash, field = idea ID.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "ideas",
	}
}

func (s *RedisStore) Create(ctx context.Context, userID, userName, title, description string, timestamp int64) (string, error) {
	record := ideaRecord{
		UserID:      userID,
		UserName:    userName,
		Title:       title,
		Description: description,
		Timestamp:   timestamp,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal idea: %w", err)
	}

	id := uuid.NewString()
	// HSetNX guards against ever reusing an ID, however unlikely.
	ok, err := s.client.HSetNX(ctx, s.key, id, payload).Result()
	if err != nil {
		return "", fmt.Errorf("create idea: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create idea: id %s already exists", id)
	}
	return id, nil
}

func (s *RedisStore) GetByID(ctx context.Context, ideaID string) (*idea.Idea, error) {
	payload, err := s.client.HGet(ctx, s.key, ideaID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idea %s: %w", ideaID, err)
	}

	var record ideaRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("unmarshal idea %s: %w", ideaID, err)
	}
	result := record.toIdea(ideaID)
	return &result, nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]idea.Idea, error) {
	entries, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	ideas := make([]idea.Idea, 0, len(entries))
	for id, payload := range entries {
		var record ideaRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("unmarshal idea %s: %w", id, err)
		}
		ideas = append(ideas, record.toIdea(id))
	}
	return ideas, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]idea.Idea, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var ideas []idea.Idea
	for _, item := range all {
		if item.UserID == userID {
			ideas = append(ideas, item)
		}
	}
	return ideas, nil
}

func (s *RedisStore) ListByTimeRange(ctx context.Context, start, end int64) ([]idea.Idea, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var ideas []idea.Idea
	for _, item := range all {
		if item.Timestamp >= start && item.Timestamp <= end {
			ideas = append(ideas, item)
		}
	}
	return ideas, nil
}

func (s *RedisStore) Count(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		count, err := s.client.HLen(ctx, s.key).Result()
		if err != nil {
			return 0, fmt.Errorf("count ideas: %w", err)
		}
		return int(count), nil
	}

	ideas, err := s.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(ideas), nil
}

// UpdateVotes reads the current tally, applies the update, and writes the
// record back. Concurrent delta updates on the same idea can race; callers
// accept the occasional lost adjustment.
func (s *RedisStore) UpdateVotes(ctx context.Context, ideaID string, update VoteUpdate) (bool, error) {
	if err := update.validate(); err != nil {
		return false, err
	}

	payload, err := s.client.HGet(ctx, s.key, ideaID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get idea %s: %w", ideaID, err)
	}

	var record ideaRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return false, fmt.Errorf("unmarshal idea %s: %w", ideaID, err)
	}

	record.Votes = update.apply(record.Votes)

	updated, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal idea %s: %w", ideaID, err)
	}
	if err := s.client.HSet(ctx, s.key, ideaID, updated).Err(); err != nil {
		return false, fmt.Errorf("update votes for idea %s: %w", ideaID, err)
	}
	return true, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
