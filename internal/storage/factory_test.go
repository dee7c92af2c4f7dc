package storage

import (
	"strings"
	"testing"
)

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("", "")
	if err != nil {
		t.Fatalf("new default store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("default store is %T, want *MemoryStore", store)
	}
}

func TestNewStoreUnknownBackend(t *testing.T) {
	_, err := NewStore("redis", "")
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected unknown backend error naming the kind, got %v", err)
	}
}
