package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"peergrade/internal/model"
)

// RubricCache handles Redis operations for resolved questionnaires.
// Questionnaires are read-mostly and effectively immutable once reviewers
// answer them, so a TTL cache in front of Mongo absorbs the resolver's reads.
type RubricCache interface {
	Set(ctx context.Context, q *model.Questionnaire) error
	Get(ctx context.Context, id string) (*model.Questionnaire, error)
	Delete(ctx context.Context, id string) error
}

type rubricCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRubricCache creates a new rubric cache
func NewRubricCache(client *redis.Client) RubricCache {
	return &rubricCache{
		client: client,
		ttl:    1 * time.Hour,
	}
}

func (c *rubricCache) key(id string) string {
	return fmt.Sprintf("rubric:%s", id)
}

func (c *rubricCache) Set(ctx context.Context, q *model.Questionnaire) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(q.ID), data, c.ttl).Err()
}

func (c *rubricCache) Get(ctx context.Context, id string) (*model.Questionnaire, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var q model.Questionnaire
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *rubricCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
