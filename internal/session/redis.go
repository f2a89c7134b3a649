package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"tagpay/internal/models"
)

// Cache keys and durations.
const (
	sessionCachePrefix = "tagpay:session:"
	snapshotTTL        = 5 * time.Minute
)

// RedisStore keeps session state in Redis, keyed per device. Snapshots
// expire so a stale balance is re-fetched rather than trusted forever;
// token, flag and PIN persist until overwritten.
type RedisStore struct {
	client   *redis.Client
	deviceID string
}

// NewRedisStore builds a RedisStore for one device identity.
func NewRedisStore(client *redis.Client, deviceID string) *RedisStore {
	if client == nil {
		panic("redis client is required")
	}
	return &RedisStore{client: client, deviceID: deviceID}
}

func (s *RedisStore) key(field string) string {
	return sessionCachePrefix + s.deviceID + ":" + field
}

func (s *RedisStore) get(field string) (string, bool) {
	val, err := s.client.Get(context.Background(), s.key(field)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("session cache read %s: %v", field, err)
		}
		return "", false
	}
	return val, true
}

func (s *RedisStore) set(field, val string, ttl time.Duration) error {
	return s.client.Set(context.Background(), s.key(field), val, ttl).Err()
}

func (s *RedisStore) AccessToken() string {
	token, _ := s.get("token")
	return token
}

func (s *RedisStore) SetAccessToken(token string) error {
	return s.set("token", token, 0)
}

func (s *RedisStore) ClearAccessToken() error {
	return s.client.Del(context.Background(), s.key("token")).Err()
}

func (s *RedisStore) IsReturningUser() bool {
	v, ok := s.get("returning")
	return ok && v == "1"
}

func (s *RedisStore) SetReturningUser(v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return s.set("returning", val, 0)
}

func (s *RedisStore) PaymentPIN() (string, bool) {
	pin, ok := s.get("pin")
	return pin, ok && pin != ""
}

func (s *RedisStore) SetPaymentPIN(pin string) error {
	return s.set("pin", pin, 0)
}

func (s *RedisStore) Snapshot() (models.AccountSnapshot, bool) {
	raw, ok := s.get("snapshot")
	if !ok {
		return models.AccountSnapshot{}, false
	}
	var snap models.AccountSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("session cache: corrupt snapshot: %v", err)
		return models.AccountSnapshot{}, false
	}
	return snap, true
}

func (s *RedisStore) SetSnapshot(snap models.AccountSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.set("snapshot", string(raw), snapshotTTL)
}
