// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/db"
	"github.com/openmineral/confirmation/internal/gemini"
	"github.com/openmineral/confirmation/internal/http/routes"
	"github.com/openmineral/confirmation/internal/logging"
	"github.com/openmineral/confirmation/internal/prompt"
	"github.com/openmineral/confirmation/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	// Logger
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logger.Info().Str("port", cfg.Port).Str("db", cfg.Driver()).Msg("starting api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	queries, err := db.Open(ctx, cfg.Driver(), cfg.DataSource())
	if err != nil {
		logger.Fatal().Err(err).Msg("db error")
	}
	defer queries.Close()
	if cfg.Driver() == db.DriverSQLite {
		// Local development runs without a separate init-db step.
		if err := queries.Bootstrap(ctx); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap sqlite schema")
		}
	}

	// Queue
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq client")
		}
	}()

	// Suggestions
	engineOpts := []suggest.Option{
		suggest.WithLogger(logger.With().Str("component", "suggest").Logger()),
		suggest.WithPrompt(prompt.LoadWithFallback(cfg.Suggestion.PromptPath, logger)),
	}
	if cfg.HasGemini() {
		gen, err := gemini.New(cfg.Gemini.APIKey,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithTimeout(cfg.Gemini.Timeout),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini client")
		}
		engineOpts = append(engineOpts, suggest.WithGenerator(gen))
		logger.Info().Str("model", gen.Model()).Msg("remote suggestions enabled")
	} else {
		logger.Info().Msg("GEMINI_API_KEY not set, suggestions use fallback rules only")
	}
	engine := suggest.NewEngine(suggest.NewCache(cfg.Suggestion.CacheTTL), engineOpts...)

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.Session.Lifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = cfg.Session.CookieSecure

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:    sess,
		Q:       queries,
		Jobs:    client,
		Suggest: engine,
		Cfg:     cfg,
		Log:     logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("listen")
	}
	logger.Info().Msg("api stopped")
}
