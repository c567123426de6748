package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type syncStateRepository struct {
	db *DB
}

func NewSyncStateRepository(db *DB) SyncStateRepository {
	return &syncStateRepository{db: db}
}

func (r *syncStateRepository) Get(ctx context.Context) (*SyncState, error) {
	var state SyncState
	var lastSyncAt, lastCursor, errorMessage sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT last_sync_at, last_cursor, total_synced, status, error_message
		FROM sync_state
		WHERE id = 1
	`).Scan(&lastSyncAt, &lastCursor, &state.TotalSynced, &state.Status, &errorMessage)

	if err == sql.ErrNoRows {
		return &SyncState{Status: SyncStatusIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	state.LastSyncAt = parseNullableTime(lastSyncAt)
	state.LastCursor = lastCursor.String
	state.ErrorMessage = errorMessage.String

	return &state, nil
}

// Begin is the single-flight guard: a conditional update that only
// succeeds when no sync is currently running. A zero row count means
// another run holds the state and the caller gets ErrConflict.
func (r *syncStateRepository) Begin(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sync_state
		SET status = ?, error_message = NULL
		WHERE id = 1 AND status != ?
	`, SyncStatusSyncing, SyncStatusSyncing)
	if err != nil {
		return fmt.Errorf("failed to begin sync: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check sync guard: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}

	return nil
}

func (r *syncStateRepository) Complete(ctx context.Context, lastSyncAt time.Time, cursor string, totalSynced int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_state
		SET last_sync_at = ?, last_cursor = ?, total_synced = ?, status = ?, error_message = NULL
		WHERE id = 1
	`, formatTime(lastSyncAt), nullableString(cursor), totalSynced, SyncStatusIdle)
	if err != nil {
		return fmt.Errorf("failed to complete sync state: %w", err)
	}
	return nil
}

func (r *syncStateRepository) Fail(ctx context.Context, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_state SET status = ?, error_message = ? WHERE id = 1
	`, SyncStatusError, message)
	if err != nil {
		return fmt.Errorf("failed to record sync error: %w", err)
	}
	return nil
}
