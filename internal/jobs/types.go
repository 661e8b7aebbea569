package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskProcessConfirmation = "confirmation:process"

	QueueProcessing = "processing"
)

type ProcessConfirmationPayload struct {
	ProcessingTaskID int64 `json:"processing_task_id"`
}

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewProcessConfirmationTask builds the processing task for a
// ProcessingTask row. taskID becomes the asynq task id so the row and the
// queue entry share one identifier. Processing is never retried.
func NewProcessConfirmationTask(processingTaskID int64, taskID string, timeout time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessConfirmationPayload{ProcessingTaskID: processingTaskID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TaskProcessConfirmation, payload,
		asynq.TaskID(taskID),
		asynq.Queue(QueueProcessing),
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
	), nil
}
