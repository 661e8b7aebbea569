package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/openmineral/confirmation/internal/db"
)

// TaskStore records the outcome of a processing run.
type TaskStore interface {
	CompleteProcessingTask(ctx context.Context, id int64, status db.TaskStatus) (db.ProcessingTask, error)
}

// Processor handles TaskProcessConfirmation. The work itself is a fixed
// delay after which the task is marked completed.
type Processor struct {
	Store TaskStore
	Delay time.Duration
	Log   zerolog.Logger
}

// ProcessTask implements asynq.Handler. Failures are recorded on the row
// and swallowed; only an undecodable payload is reported to asynq.
func (p *Processor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ProcessConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	log := p.Log.With().Int64("processing_task_id", payload.ProcessingTaskID).Logger()
	log.Info().Dur("delay", p.Delay).Msg("processing started")
	start := time.Now()

	if err := p.run(ctx, payload.ProcessingTaskID); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("processing failed")
		// The job context may be done already; the failure still has to land.
		failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, ferr := p.Store.CompleteProcessingTask(failCtx, payload.ProcessingTaskID, db.TaskFailed); ferr != nil {
			log.Error().Err(ferr).Msg("mark processing task failed")
		}
		return nil
	}
	log.Info().Dur("duration", time.Since(start)).Msg("processing completed")
	return nil
}

func (p *Processor) run(ctx context.Context, id int64) error {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if _, err := p.Store.CompleteProcessingTask(ctx, id, db.TaskCompleted); err != nil {
		return fmt.Errorf("complete processing task: %w", err)
	}
	return nil
}
