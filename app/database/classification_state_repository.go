package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type classificationStateRepository struct {
	db *DB
}

func NewClassificationStateRepository(db *DB) ClassificationStateRepository {
	return &classificationStateRepository{db: db}
}

func (r *classificationStateRepository) Get(ctx context.Context) (*ClassificationState, error) {
	var state ClassificationState
	var phase, errorMessage, startedAt, completedAt sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT status, phase, progress_current, progress_total, error_message, started_at, completed_at
		FROM classification_state
		WHERE id = 1
	`).Scan(&state.Status, &phase, &state.ProgressCurrent, &state.ProgressTotal,
		&errorMessage, &startedAt, &completedAt)

	if err == sql.ErrNoRows {
		return &ClassificationState{Status: ClassificationStatusIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification state: %w", err)
	}

	state.Phase = phase.String
	state.ErrorMessage = errorMessage.String
	state.StartedAt = parseNullableTime(startedAt)
	state.CompletedAt = parseNullableTime(completedAt)

	return &state, nil
}

// Update applies only the fields set on the update struct. An update
// with nothing set is a valid no-op.
func (r *classificationStateRepository) Update(ctx context.Context, update ClassificationStateUpdate) error {
	var fields []string
	var values []any

	if update.Status != nil {
		fields = append(fields, "status = ?")
		values = append(values, *update.Status)
	}
	if update.Phase != nil {
		fields = append(fields, "phase = ?")
		values = append(values, nullableString(*update.Phase))
	}
	if update.ProgressCurrent != nil {
		fields = append(fields, "progress_current = ?")
		values = append(values, *update.ProgressCurrent)
	}
	if update.ProgressTotal != nil {
		fields = append(fields, "progress_total = ?")
		values = append(values, *update.ProgressTotal)
	}
	if update.ErrorMessage != nil {
		fields = append(fields, "error_message = ?")
		values = append(values, nullableString(*update.ErrorMessage))
	}
	if update.StartedAt != nil {
		fields = append(fields, "started_at = ?")
		values = append(values, formatTime(*update.StartedAt))
	}
	if update.CompletedAt != nil {
		fields = append(fields, "completed_at = ?")
		values = append(values, formatTime(*update.CompletedAt))
	}

	if len(fields) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE classification_state SET %s WHERE id = 1`, strings.Join(fields, ", "))
	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to update classification state: %w", err)
	}

	return nil
}

// Begin is the single-flight guard for the classification family: the
// conditional update only succeeds from idle or error, so at most one
// discovery or classification run can hold the state machine.
func (r *classificationStateRepository) Begin(ctx context.Context, status string, startedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE classification_state
		SET status = ?, phase = NULL, progress_current = 0, progress_total = 0,
		    error_message = NULL, started_at = ?, completed_at = NULL
		WHERE id = 1 AND status IN (?, ?)
	`, status, formatTime(startedAt), ClassificationStatusIdle, ClassificationStatusError)
	if err != nil {
		return fmt.Errorf("failed to begin classification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check classification guard: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}

	return nil
}
