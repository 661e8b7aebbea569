package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/db"
	"github.com/openmineral/confirmation/internal/jobs"
	"github.com/openmineral/confirmation/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	q, err := db.Open(context.Background(), cfg.Driver(), cfg.DataSource())
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer q.Close()

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency:    cfg.WorkerConcurrency,
		StrictPriority: false,
		Queues: map[string]int{
			jobs.QueueProcessing: 10, // higher priority
			"default":            1,
		},
		Logger: logging.AsynqLogger{L: logger.With().Str("component", "asynq").Logger()},
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskProcessConfirmation, &jobs.Processor{
		Store: q,
		Delay: cfg.Processing.Delay,
		Log:   logger.With().Str("task", jobs.TaskProcessConfirmation).Logger(),
	})

	logger.Info().
		Int("concurrency", cfg.WorkerConcurrency).
		Dur("delay", cfg.Processing.Delay).
		Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
