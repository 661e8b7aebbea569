package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var taskColumns = []string{"id", "business_confirmation", "celery_task_id", "status", "created_at", "completed_at"}

func scanTask(row sq.RowScanner) (ProcessingTask, error) {
	var t ProcessingTask
	err := row.Scan(&t.ID, &t.BusinessConfirmation, &t.CeleryTaskID, &t.Status, &t.CreatedAt, &t.CompletedAt)
	return t, err
}

// CreateProcessingTask records a pending run for a confirmation under the
// queue task id taskID.
func (q *Queries) CreateProcessingTask(ctx context.Context, confirmationID int64, taskID string) (ProcessingTask, error) {
	t := ProcessingTask{
		BusinessConfirmation: confirmationID,
		CeleryTaskID:         taskID,
		Status:               TaskPending,
		CreatedAt:            time.Now().UTC(),
	}
	query, args, err := q.sb.Insert("processing_tasks").
		Columns("business_confirmation", "celery_task_id", "status", "created_at").
		Values(t.BusinessConfirmation, t.CeleryTaskID, string(t.Status), t.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return ProcessingTask{}, fmt.Errorf("build insert processing task: %w", err)
	}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&t.ID); err != nil {
		return ProcessingTask{}, fmt.Errorf("insert processing task: %w", mapError(err))
	}
	return t, nil
}

func (q *Queries) GetProcessingTask(ctx context.Context, id int64) (ProcessingTask, error) {
	return q.getTask(ctx, sq.Eq{"id": id})
}

// GetProcessingTaskByTaskID looks a task up by its queue task id.
func (q *Queries) GetProcessingTaskByTaskID(ctx context.Context, taskID string) (ProcessingTask, error) {
	return q.getTask(ctx, sq.Eq{"celery_task_id": taskID})
}

func (q *Queries) getTask(ctx context.Context, where sq.Eq) (ProcessingTask, error) {
	query, args, err := q.sb.Select(taskColumns...).From("processing_tasks").Where(where).ToSql()
	if err != nil {
		return ProcessingTask{}, fmt.Errorf("build get processing task: %w", err)
	}
	t, err := scanTask(q.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return ProcessingTask{}, fmt.Errorf("get processing task: %w", mapError(err))
	}
	return t, nil
}

// CompleteProcessingTask sets the final status. completed_at is stamped
// for completed tasks only.
func (q *Queries) CompleteProcessingTask(ctx context.Context, id int64, status TaskStatus) (ProcessingTask, error) {
	upd := q.sb.Update("processing_tasks").
		Set("status", string(status)).
		Where(sq.Eq{"id": id})
	if status == TaskCompleted {
		upd = upd.Set("completed_at", time.Now().UTC())
	}
	query, args, err := upd.ToSql()
	if err != nil {
		return ProcessingTask{}, fmt.Errorf("build update processing task: %w", err)
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return ProcessingTask{}, fmt.Errorf("update processing task %d: %w", id, mapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ProcessingTask{}, fmt.Errorf("update processing task %d: %w", id, ErrNotFound)
	}
	return q.GetProcessingTask(ctx, id)
}
