package submission

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreExpiresSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok(t, store.Save(ctx, &Session{ID: "a"}))
	_, err := store.Load(ctx, "a")
	ok(t, err)

	now = now.Add(2 * time.Hour)
	_, err = store.Load(ctx, "a")
	equals(t, err, ErrSessionNotFound)

	ok(t, store.Save(ctx, &Session{ID: "b"}))
	equals(t, store.Len(), 1)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	ok(t, store.Save(ctx, &Session{ID: "a"}))

	loaded, err := store.Load(ctx, "a")
	ok(t, err)
	loaded.Machine = Machine{state: FailedState("changed")}

	again, err := store.Load(ctx, "a")
	ok(t, err)
	equals(t, again.State().Kind(), Idle)

	ok(t, store.Delete(ctx, "a"))
	_, err = store.Load(ctx, "a")
	equals(t, err, ErrSessionNotFound)
}

func TestSortedScores(t *testing.T) {
	scores := SortedScores(map[string]float64{"Rust": 0.07, "Healthy": 0.93, "Blight": 0.07})
	equals(t, len(scores), 3)
	equals(t, scores[0].Label, "Healthy")
	equals(t, scores[1].Label, "Blight")
	equals(t, scores[2].Label, "Rust")
	equals(t, Percent(0.93), "93.00%")
}
