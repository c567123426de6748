package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSyncState_InitialRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)

	state, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Failed to get sync state: %v", err)
	}
	if state.Status != SyncStatusIdle {
		t.Errorf("Expected idle, got %s", state.Status)
	}
	if state.LastSyncAt != nil {
		t.Errorf("Expected no last sync time, got %v", state.LastSyncAt)
	}
	if state.TotalSynced != 0 {
		t.Errorf("Expected total 0, got %d", state.TotalSynced)
	}
}

func TestSyncState_BeginGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)
	ctx := context.Background()

	if err := repo.Begin(ctx); err != nil {
		t.Fatalf("Expected first Begin to succeed, got %v", err)
	}

	err := repo.Begin(ctx)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict while syncing, got %v", err)
	}

	state, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get sync state: %v", err)
	}
	if state.Status != SyncStatusSyncing {
		t.Errorf("Expected syncing, got %s", state.Status)
	}
}

func TestSyncState_CompleteCycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)
	ctx := context.Background()

	if err := repo.Begin(ctx); err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}

	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Complete(ctx, syncedAt, "cursor-abc", 123); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}

	state, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get sync state: %v", err)
	}
	if state.Status != SyncStatusIdle {
		t.Errorf("Expected idle after complete, got %s", state.Status)
	}
	if state.LastSyncAt == nil || !state.LastSyncAt.Equal(syncedAt) {
		t.Errorf("Expected last sync %v, got %v", syncedAt, state.LastSyncAt)
	}
	if state.LastCursor != "cursor-abc" {
		t.Errorf("Expected cursor cursor-abc, got %s", state.LastCursor)
	}
	if state.TotalSynced != 123 {
		t.Errorf("Expected total 123, got %d", state.TotalSynced)
	}

	// Completing releases the guard for the next run.
	if err := repo.Begin(ctx); err != nil {
		t.Errorf("Expected Begin after complete to succeed, got %v", err)
	}
}

func TestSyncState_FailCycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSyncStateRepository(db)
	ctx := context.Background()

	if err := repo.Begin(ctx); err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}
	if err := repo.Fail(ctx, "Safari cookies expired or missing"); err != nil {
		t.Fatalf("Failed to record error: %v", err)
	}

	state, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get sync state: %v", err)
	}
	if state.Status != SyncStatusError {
		t.Errorf("Expected error status, got %s", state.Status)
	}
	if state.ErrorMessage != "Safari cookies expired or missing" {
		t.Errorf("Unexpected error message: %s", state.ErrorMessage)
	}

	// A failed run must not block the retry, and beginning clears the
	// stale message.
	if err := repo.Begin(ctx); err != nil {
		t.Fatalf("Expected Begin after failure to succeed, got %v", err)
	}
	state, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get sync state: %v", err)
	}
	if state.ErrorMessage != "" {
		t.Errorf("Expected error message cleared, got %s", state.ErrorMessage)
	}
}
