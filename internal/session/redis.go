package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-storefront/internal/logging"
)

const maxTxRetries = 5

// RedisStore keeps sessions as JSON strings under prefix:id.  Updates run
// inside WATCH/MULTI so concurrent requests from one visitor cannot lose
// each other's writes.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore.  Each update resets the key's TTL.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	return s.load(ctx, s.rdb, id)
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) error {
	key := s.key(id)
	txf := func(tx *redis.Tx) error {
		sess, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&sess); err != nil {
			return err
		}
		sess.ID = id
		b, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			logging.FromContext(ctx).WithField("attempt", i+1).Debug("session: watch conflict, retrying")
			continue
		}
		return err
	}
	return ErrConflict
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, id string) (Session, error) {
	b, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{ID: id}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: load: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		// A value we cannot read is treated as an expired session.
		logging.FromContext(ctx).WithError(err).Warn("session: dropping unreadable session")
		return Session{ID: id}, nil
	}
	sess.ID = id
	return sess, nil
}
