package behaviorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SentinelMesh/AccessGate/pkg/domain/behavior"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const profileKey = "behavior:profile:%s"

// RedisStore keeps each user's baseline as a Redis list, newest first,
// trimmed to the history bound on every save.
type RedisStore struct {
	client *redis.Client
	bound  int
	logger *logrus.Logger
}

func NewRedisStore(client *redis.Client, bound int, logger *logrus.Logger) behavior.Store {
	return &RedisStore{
		client: client,
		bound:  bound,
		logger: logger,
	}
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*behavior.Profile, error) {
	key := fmt.Sprintf(profileKey, userID)

	items, err := s.client.LRange(ctx, key, 0, int64(s.bound-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load behavior profile: %w", err)
	}

	profile := &behavior.Profile{UserID: userID}
	for _, item := range items {
		var sample behavior.ActivitySample
		if err := json.Unmarshal([]byte(item), &sample); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("skipping corrupt behavior sample")
			continue
		}
		profile.Samples = append(profile.Samples, sample)
	}

	return profile, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, profile *behavior.Profile) error {
	key := fmt.Sprintf(profileKey, userID)

	// Newest sample sits at the front of the profile; only it is new
	// relative to the stored list, so a push-and-trim keeps the ring
	// bounded without rewriting the whole history.
	if profile.Len() == 0 {
		return nil
	}
	data, err := json.Marshal(profile.Samples[0])
	if err != nil {
		return fmt.Errorf("failed to marshal behavior sample: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.bound-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save behavior profile: %w", err)
	}
	return nil
}
