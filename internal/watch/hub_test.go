package watch

import (
	"testing"
	"time"

	"github.com/tbourn/go-study-backend/internal/domain"
)

func snap(titles ...string) Snapshot {
	out := make(Snapshot, 0, len(titles))
	for _, t := range titles {
		out = append(out, domain.Assignment{ID: t, Title: t})
	}
	return out
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("u1")
	defer sub.Close()

	h.Publish("u1", snap("a", "b"))

	select {
	case got := <-sub.C:
		if len(got) != 2 || got[0].Title != "a" {
			t.Fatalf("snapshot = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestHub_PublishIsScopedToUser(t *testing.T) {
	h := NewHub()
	mine := h.Subscribe("u1")
	other := h.Subscribe("u2")
	defer mine.Close()
	defer other.Close()

	h.Publish("u1", snap("a"))

	select {
	case <-other.C:
		t.Fatal("snapshot leaked across users")
	case <-time.After(20 * time.Millisecond):
	}
	select {
	case <-mine.C:
	case <-time.After(time.Second):
		t.Fatal("owner did not receive snapshot")
	}
}

func TestHub_SlowSubscriberSeesLatestOnly(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("u1")
	defer sub.Close()

	h.Publish("u1", snap("old"))
	h.Publish("u1", snap("new"))

	got := <-sub.C
	if len(got) != 1 || got[0].Title != "new" {
		t.Fatalf("snapshot = %+v, want coalesced latest", got)
	}
	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSubscription_Close(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("u1")
	if n := h.Subscribers("u1"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	sub.Close()
	sub.Close() // idempotent

	if n := h.Subscribers("u1"); n != 0 {
		t.Fatalf("subscribers after close = %d, want 0", n)
	}

	// Channel is closed; receive must not block.
	if _, ok := <-sub.C; ok {
		t.Fatal("expected closed channel after Close")
	}

	// Publishing to a user with no subscribers must not panic.
	h.Publish("u1", snap("x"))
}
