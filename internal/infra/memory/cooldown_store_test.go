package memory

import (
	"context"
	"testing"
	"time"
)

func TestCooldownStoreExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewCooldownStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	if remaining, _ := store.Remaining(ctx, "u1"); remaining != 0 {
		t.Fatalf("expected no cooldown, got %v", remaining)
	}

	if err := store.StartCooldown(ctx, "u1", time.Hour); err != nil {
		t.Fatalf("start cooldown: %v", err)
	}
	now = now.Add(15 * time.Minute)
	if remaining, _ := store.Remaining(ctx, "u1"); remaining != 45*time.Minute {
		t.Fatalf("expected 45m remaining, got %v", remaining)
	}

	now = now.Add(time.Hour)
	if remaining, _ := store.Remaining(ctx, "u1"); remaining != 0 {
		t.Fatalf("expected cooldown over, got %v", remaining)
	}
}
