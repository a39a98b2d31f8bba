package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "session"

// Pool hands out redis connections; *redis.Pool satisfies it.
type Pool interface {
	Get() redis.Conn
}

// RedisStore shares sessions between playground instances. Sessions are
// stored as JSON with an expiry, a page left alone for longer than the
// TTL is gone.
type RedisStore struct {
	pool Pool
	ttl  time.Duration
}

var _ submission.Store = (*RedisStore)(nil)

func NewRedisPool(address string, maxConnections int) *redis.Pool {
	return redis.NewPool(func() (redis.Conn, error) {
		c, err := redis.Dial("tcp", address)

		if err != nil {
			return nil, err
		}

		return c, err
	}, maxConnections)
}

func NewRedisStore(pool Pool, ttl time.Duration) *RedisStore {
	return &RedisStore{pool: pool, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*submission.Session, error) {
	redisConn := s.pool.Get()
	defer redisConn.Close()

	data, err := redis.Bytes(redisConn.Do("GET", keyPrefix+id))
	if err == redis.ErrNil {
		return nil, submission.ErrSessionNotFound
	}
	if err != nil {
		log.Debug("[Storage] Couldn't get session: ", err.Error())
		return nil, errors.Wrap(err, "couldn't get session")
	}

	var session submission.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Debug("[Storage] Couldn't unmarshal session: ", err.Error())
		return nil, errors.Wrap(err, "couldn't unmarshal session")
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *submission.Session) error {
	serialized, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "couldn't marshal session")
	}

	redisConn := s.pool.Get()
	defer redisConn.Close()

	if s.ttl > 0 {
		_, err = redisConn.Do("SETEX", keyPrefix+session.ID, int(s.ttl.Seconds()), serialized)
	} else {
		_, err = redisConn.Do("SET", keyPrefix+session.ID, serialized)
	}
	if err != nil {
		log.Debug("[Storage] Couldn't store session: ", err.Error())
		return errors.Wrap(err, "couldn't store session")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	redisConn := s.pool.Get()
	defer redisConn.Close()

	if _, err := redisConn.Do("DEL", keyPrefix+id); err != nil {
		return errors.Wrap(err, "couldn't delete session")
	}
	return nil
}

// Ping checks the connection, used at startup.
func (s *RedisStore) Ping() error {
	redisConn := s.pool.Get()
	defer redisConn.Close()

	_, err := redisConn.Do("PING")
	return errors.Wrap(err, "couldn't reach redis")
}
