package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
)

func newTestKV(t *testing.T) *KVStorage {
	t.Helper()

	logger := common.NewSilentLogger()
	db, err := NewBadgerDB(logger, &config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewKVStorage(db, logger)
}

func TestKVStorage_SetAndGet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "onboarding:v1:ticker_tooltip_seen", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := kv.Get(ctx, "onboarding:v1:ticker_tooltip_seen")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "true" {
		t.Errorf("expected true, got %s", val)
	}
}

func TestKVStorage_GetNotFound(t *testing.T) {
	kv := newTestKV(t)

	_, err := kv.Get(context.Background(), "missing")
	if !errors.Is(err, interfaces.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestKVStorage_Upsert(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	kv.Set(ctx, "key", "value1")
	if err := kv.Set(ctx, "key", "value2"); err != nil {
		t.Fatalf("Set (upsert) failed: %v", err)
	}
	if val, _ := kv.Get(ctx, "key"); val != "value2" {
		t.Errorf("expected value2, got %s", val)
	}
}

func TestKVStorage_Delete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	kv.Set(ctx, "key", "value")
	if err := kv.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "key"); err == nil {
		t.Error("expected error after delete, got nil")
	}
	if err := kv.Delete(ctx, "key"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

func TestKVStorage_ListPrefix(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	kv.Set(ctx, "onboarding:a:ticker_tooltip_seen", "true")
	kv.Set(ctx, "onboarding:b:ticker_tooltip_seen", "true")
	kv.Set(ctx, "other:c", "x")

	got, err := kv.List(ctx, "onboarding:")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
	if _, ok := got["other:c"]; ok {
		t.Error("List returned a key outside the prefix")
	}

	all, _ := kv.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("empty prefix should list everything, got %d", len(all))
	}
}

func TestManager_OpenClose(t *testing.T) {
	m, err := NewManager(common.NewSilentLogger(), &config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.KeyValueStorage().Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNewBadgerDB_EmptyPath(t *testing.T) {
	if _, err := NewBadgerDB(common.NewSilentLogger(), &config.BadgerConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}
