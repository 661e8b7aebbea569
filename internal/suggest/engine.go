package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openmineral/confirmation/internal/prompt"
)

// Generator is a single-turn text generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine answers suggestion requests. It is safe for concurrent use, but
// a miss is read, computed and written in separate steps: two concurrent
// misses on one key both compute and the last write wins.
type Engine struct {
	cache  *Cache
	gen    Generator
	prompt *prompt.Template
	now    func() time.Time
	log    zerolog.Logger
}

type Option func(*Engine)

// WithGenerator enables remote suggestions. Pass it only when a credential
// is configured; without it every result has SourceFallback.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.gen = g }
}

func WithPrompt(t *prompt.Template) Option {
	return func(e *Engine) {
		if t != nil {
			e.prompt = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine backed by cache. A nil cache gets a fresh
// one with DefaultTTL.
func NewEngine(cache *Cache, opts ...Option) *Engine {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	e := &Engine{
		cache:  cache,
		prompt: prompt.Default(),
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Cache exposes the engine's cache.
func (e *Engine) Cache() *Cache { return e.cache }

// RemoteEnabled reports whether a Generator is configured.
func (e *Engine) RemoteEnabled() bool { return e.gen != nil }

// Suggest returns pricing guidance for req. Remote failures are absorbed
// and never returned. A non-nil error means the computation itself broke;
// the result is then Default() and callers should still serve it.
func (e *Engine) Suggest(ctx context.Context, req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("suggestion computation failed")
			res, err = Default(), fmt.Errorf("suggest: %v", r)
		}
	}()

	key := req.Key()
	now := e.now()

	if req.Editing() {
		if n := e.cache.EvictExcept(key); n > 0 {
			e.log.Debug().Str("key", key).Int("evicted", n).Msg("purged suggestion cache")
		}
	}

	if entry, ok := e.cache.Read(key, now); ok {
		e.log.Debug().Str("key", key).Msg("returning cached suggestion")
		return entry.Result, nil
	}

	res = fallback(req)
	if e.gen != nil {
		// Reported as ai whenever a credential is configured, even if the
		// call below fails or the reply is malformed.
		res.Source = SourceAI
		e.enhance(ctx, req, &res)
	} else {
		e.log.Debug().Msg("no generator configured, using fallback")
	}

	e.cache.Write(key, res, now)
	return res, nil
}

// enhance replaces res's suggestions with the remote model's when it
// answers with non-empty text.
func (e *Engine) enhance(ctx context.Context, req Request, res *Result) {
	text, err := e.prompt.Render(prompt.Fields{
		Material:        req.Material,
		TreatmentCharge: req.TreatmentCharge,
		RefiningCharge:  req.RefiningCharge,
		DeliveryPoint:   req.DeliveryPoint,
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("render suggestion prompt")
		return
	}

	reply, err := e.gen.Generate(ctx, text)
	if err != nil {
		e.log.Warn().Err(err).Msg("remote suggestion failed, using fallback")
		return
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		e.log.Warn().Msg("remote suggestion was empty, using fallback")
		return
	}

	res.TCSuggestion, res.RCSuggestion = applyReply(reply, res.RCSuggestion)
}
