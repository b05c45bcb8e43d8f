package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-study-backend/internal/domain"
)

func TestGetStateBlob_AbsentIsNilNil(t *testing.T) {
	db := newTestDB(t, &domain.StateBlob{})
	b, err := GetStateBlob(context.Background(), db, "u1", StateKeyUsage)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b != nil {
		t.Fatalf("blob = %v, want nil for absent key", b)
	}
}

func TestPutStateBlob_ReplacesWhole(t *testing.T) {
	db := newTestDB(t, &domain.StateBlob{})
	ctx := context.Background()

	if err := PutStateBlob(ctx, db, "u1", StateKeyTranscript, []byte(`[1]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := PutStateBlob(ctx, db, "u1", StateKeyTranscript, []byte(`[1,2]`)); err != nil {
		t.Fatalf("put 2: %v", err)
	}

	b, err := GetStateBlob(ctx, db, "u1", StateKeyTranscript)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != `[1,2]` {
		t.Fatalf("blob = %q, want [1,2]", b)
	}

	// Different user, same key: isolated.
	other, _ := GetStateBlob(ctx, db, "u2", StateKeyTranscript)
	if other != nil {
		t.Fatalf("u2 blob = %q, want nil", other)
	}
}

func TestChatReceipt_RoundTripAndExpiry(t *testing.T) {
	db := newTestDB(t, &domain.ChatReceipt{})
	ctx := context.Background()

	if _, err := CreateChatReceipt(ctx, db, "u1", "k1", []byte(`{"ai_message":"hi"}`), time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, err := GetChatReceipt(ctx, db, "u1", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(rec.Turn) != `{"ai_message":"hi"}` {
		t.Fatalf("turn = %q", rec.Turn)
	}

	// Expired window.
	if _, err := GetChatReceipt(ctx, db, "u1", "k1", time.Now().UTC().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired get err = %v, want ErrNotFound", err)
	}

	// Duplicate key for the same user.
	if _, err := CreateChatReceipt(ctx, db, "u1", "k1", nil, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("dup err = %v, want ErrDuplicate", err)
	}

	// Empty key never matches.
	if _, err := GetChatReceipt(ctx, db, "u1", "", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty key err = %v, want ErrNotFound", err)
	}
}
