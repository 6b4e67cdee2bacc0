package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/wordhunt/internal/game"
)

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := kv.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatal(err)
	}
	v, err := kv.Get(ctx, "k")
	if err != nil || string(v) != "two" {
		t.Fatalf("Get(k) = %q, %v; want two", v, err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete err = %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	testKV(t, NewMemoryKV())

	kv := NewMemoryKV()
	buf := []byte("abc")
	_ = kv.Set(context.Background(), "k", buf)
	buf[0] = 'z'
	if v, _ := kv.Get(context.Background(), "k"); string(v) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
}

func openTestUsers(t *testing.T) *Users {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Migrations are idempotent.
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	testKV(t, NewSQLiteKV(db))
	return NewUsers(db)
}

func TestSQLiteUsers(t *testing.T) {
	users := openTestUsers(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "u1", "Alice", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := users.Create(ctx, "u2", "alice", "hash"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate username err = %v, want ErrUsernameTaken", err)
	}
	got, err := users.ByUsername(ctx, " ALICE ")
	if err != nil || got.ID != u.ID {
		t.Fatalf("ByUsername = %+v, %v", got, err)
	}
	if _, err := users.ByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ByID(nobody) err = %v", err)
	}

	for _, won := range []bool{true, true, false, true} {
		if err := users.BumpStats(ctx, u.ID, won); err != nil {
			t.Fatal(err)
		}
	}
	got, _ = users.ByID(ctx, u.ID)
	if got.GamesPlayed != 4 || got.Wins != 3 || got.Streak != 1 {
		t.Errorf("counters = %d/%d/%d, want 4/3/1", got.GamesPlayed, got.Wins, got.Streak)
	}
}

func TestGamesSweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg := NewGames(clock)
	ctx := context.Background()

	old, _ := game.New("crane", game.WithID("old"), game.WithClock(clock))
	fresh, _ := game.New("slate", game.WithID("fresh"), game.WithClock(clock))
	_ = reg.Save(ctx, "p1", old)
	now = now.Add(90 * time.Minute)
	_ = reg.Save(ctx, "p2", fresh)
	now = now.Add(45 * time.Minute)

	swept := reg.Sweep(2 * time.Hour)
	if len(swept) != 1 || swept[0].ID != "old" {
		t.Fatalf("swept %v, want [old]", swept)
	}
	if _, _, err := reg.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old still present: %v", err)
	}
	g, owner, err := reg.Get(ctx, "fresh")
	if err != nil || g != fresh || owner != "p2" {
		t.Errorf("Get(fresh) = %v, %q, %v", g, owner, err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}
