package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore tracks live admin sessions. A session id is written on
// login with a TTL and removed on logout, so a stolen token that is signed
// correctly but whose session was revoked still fails verification.
type RedisSessionStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

const (
	// Redis only has string type, there is no boolean or int, so we use "1" to represent true
	RedisTrue = "1"

	sessionKeyPrefix = "admin_session"
)

var ctx = context.Background()

func GetRedisSessionStore() (*RedisSessionStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &RedisSessionStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeSessionKey(sessionId string) (string, error) {
	if !r.ValidateId(sessionId) {
		return "", fmt.Errorf("invalid sessionId: %s", sessionId)
	}
	return fmt.Sprintf("%s%s%s", sessionKeyPrefix, r.delimiter, sessionId), nil
}

// CreateSession records a session id with the given time-to-live.
func (s *RedisSessionStore) CreateSession(sessionId string, ttl time.Duration) error {
	key, err := s.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, RedisTrue, ttl).Err()
}

// IsSessionAlive returns true iff the session was created and not yet revoked
// or expired.
func (s *RedisSessionStore) IsSessionAlive(sessionId string) (bool, error) {
	key, err := s.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return false, err
	}
	res, err := s.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == RedisTrue, nil
}

// RevokeSession deletes the session. Revoking a non-existing session is not
// an error.
func (s *RedisSessionStore) RevokeSession(sessionId string) error {
	key, err := s.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return err
	}
	return s.inner.Del(ctx, key).Err()
}
