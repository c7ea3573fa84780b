package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestKey(t *testing.T) {
	vb := pathdata.ViewBox{Width: 24, Height: 24}
	f := pathdata.Frame{Width: 48, Height: 48}

	k1 := Key(KindPath, []byte("M 0 0"), vb, f, false)
	if len(k1) != 64 {
		t.Fatalf("key length = %d, want 64", len(k1))
	}
	if k1 != Key(KindPath, []byte("M 0 0"), vb, f, false) {
		t.Error("Key is not deterministic")
	}

	variants := []string{
		Key(KindSVG, []byte("M 0 0"), vb, f, false),
		Key(KindPath, []byte("M 0 1"), vb, f, false),
		Key(KindPath, []byte("M 0 0"), pathdata.ViewBox{Width: 12, Height: 24}, f, false),
		Key(KindPath, []byte("M 0 0"), pathdata.ViewBox{Width: 24.001, Height: 24}, f, false),
		Key(KindPath, []byte("M 0 0"), pathdata.ViewBox{X: 0.004, Width: 24, Height: 24}, f, false),
		Key(KindPath, []byte("M 0 0"), vb, pathdata.Frame{Width: 48, Height: 48, OffsetX: 1}, false),
		Key(KindPath, []byte("M 0 0"), vb, f, true),
	}
	for i, k := range variants {
		if k == k1 {
			t.Errorf("variant %d collides with the base key", i)
		}
	}
}

func TestGetPut(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := store.Put(ctx, "k", KindPath, []byte("M 1 1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != "M 1 1" {
		t.Errorf("Get = %q, want %q", got, "M 1 1")
	}

	// Put replaces.
	if err := store.Put(ctx, "k", KindPath, []byte("M 2 2")); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, _, _ = store.Get(ctx, "k")
	if string(got) != "M 2 2" {
		t.Errorf("after replace Get = %q", got)
	}
}

func TestStatsAndPurge(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.Put(ctx, "a", KindPath, []byte("M 1 1"))
	store.Put(ctx, "b", KindSVG, []byte("<svg/>"))
	store.Get(ctx, "a")
	store.Get(ctx, "a")

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Entries != 2 || st.Hits != 2 || st.Bytes != 11 {
		t.Errorf("Stats = %+v, want {2 2 11}", st)
	}

	// Nothing is an hour old yet.
	n, err := store.Purge(ctx, time.Hour)
	if err != nil || n != 0 {
		t.Errorf("Purge(1h) = %d, %v", n, err)
	}
	n, err = store.Purge(ctx, 0)
	if err != nil || n != 2 {
		t.Errorf("Purge(0) = %d, %v; want 2", n, err)
	}
	st, _ = store.Stats(ctx)
	if st.Entries != 0 {
		t.Errorf("entries after purge = %d", st.Entries)
	}
}

func TestRescalePath(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	r := pathdata.NewRescaler(pathdata.ViewBox{Width: 10, Height: 10}, pathdata.Frame{Width: 20, Height: 20})

	out, hit, err := store.RescalePath(ctx, r, "M 0 0 L 10 10", false)
	if err != nil || hit {
		t.Fatalf("first RescalePath: hit %v, err %v", hit, err)
	}
	if out != "M 0 0 L 20 20" {
		t.Errorf("out = %q", out)
	}

	out, hit, err = store.RescalePath(ctx, r, "M 0 0 L 10 10", false)
	if err != nil || !hit {
		t.Fatalf("second RescalePath: hit %v, err %v", hit, err)
	}
	if out != "M 0 0 L 20 20" {
		t.Errorf("cached out = %q", out)
	}

	// Strict failures are reported and not stored.
	_, _, err = store.RescalePath(ctx, r, "M 1", true)
	var cmdErr *pathdata.CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("expected *pathdata.CommandError, got %v", err)
	}
	st, _ := store.Stats(ctx)
	if st.Entries != 1 {
		t.Errorf("entries = %d, want 1", st.Entries)
	}
}

func TestRescalePath_NearbyViewBoxes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	f := pathdata.Frame{Width: 1000, Height: 1000}

	first := pathdata.NewRescaler(pathdata.ViewBox{Width: 1.001, Height: 1}, f)
	if _, _, err := store.RescalePath(ctx, first, "M 1 1", false); err != nil {
		t.Fatalf("RescalePath: %v", err)
	}

	second := pathdata.NewRescaler(pathdata.ViewBox{Width: 1.004, Height: 1}, f)
	out, hit, err := store.RescalePath(ctx, second, "M 1 1", false)
	if err != nil {
		t.Fatalf("RescalePath: %v", err)
	}
	if hit {
		t.Error("viewboxes differing in the third decimal shared a cache entry")
	}
	if out != "M 996.02 1000" {
		t.Errorf("out = %q, want %q", out, "M 996.02 1000")
	}
}
