package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/garyburd/redigo/redis"
)

// fakeRedis implements just enough of GET/SET/SETEX/DEL/PING.
type fakeRedis struct {
	mu       sync.Mutex
	values   map[string][]byte
	expiry   map[string]int
	fail     error
	commands []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string][]byte), expiry: make(map[string]int)}
}

func (f *fakeRedis) Get() redis.Conn {
	return &fakeConn{redis: f}
}

type fakeConn struct {
	redis *fakeRedis
}

func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Err() error   { return nil }
func (c *fakeConn) Send(commandName string, args ...interface{}) error {
	return fmt.Errorf("send not supported")
}
func (c *fakeConn) Flush() error                  { return nil }
func (c *fakeConn) Receive() (interface{}, error) { return nil, fmt.Errorf("receive not supported") }

func (c *fakeConn) Do(commandName string, args ...interface{}) (interface{}, error) {
	f := c.redis
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, commandName)
	if f.fail != nil {
		return nil, f.fail
	}

	switch commandName {
	case "PING":
		return "PONG", nil
	case "GET":
		v, ok := f.values[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "SET":
		f.values[args[0].(string)] = args[1].([]byte)
		return "OK", nil
	case "SETEX":
		f.values[args[0].(string)] = args[2].([]byte)
		f.expiry[args[0].(string)] = args[1].(int)
		return "OK", nil
	case "DEL":
		delete(f.values, args[0].(string))
		return int64(1), nil
	}
	return nil, fmt.Errorf("unsupported command %s", commandName)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake, time.Hour)
	ctx := context.Background()

	machine, _, err := submission.Machine{}.Begin(false)
	equals(t, err, submission.ErrNoFileSelected)
	session := &submission.Session{ID: "abc", Machine: machine}

	ok(t, store.Save(ctx, session))
	equals(t, fake.expiry["sessionabc"], 3600)

	loaded, err := store.Load(ctx, "abc")
	ok(t, err)
	equals(t, loaded.ID, "abc")
	equals(t, loaded.State(), session.State())

	ok(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	equals(t, err, submission.ErrSessionNotFound)
}

func TestRedisStoreWithoutTTLUsesSet(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake, 0)

	ok(t, store.Save(context.Background(), &submission.Session{ID: "abc"}))
	equals(t, fake.commands, []string{"SET"})
}

func TestRedisStoreErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.fail = fmt.Errorf("connection reset")
	store := NewRedisStore(fake, time.Hour)

	_, err := store.Load(context.Background(), "abc")
	notEquals(t, err, nil)
	notEquals(t, err, submission.ErrSessionNotFound)
	notEquals(t, store.Save(context.Background(), &submission.Session{ID: "abc"}), nil)
	notEquals(t, store.Ping(), nil)
}

func TestRedisStoreRejectsCorruptSessions(t *testing.T) {
	fake := newFakeRedis()
	fake.values["sessionabc"] = []byte("{not json")
	store := NewRedisStore(fake, time.Hour)

	_, err := store.Load(context.Background(), "abc")
	notEquals(t, err, nil)
}
