package registry

import (
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-bag/pkg/activity"
	"github.com/google/uuid"
)

// Option configures a Registry.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	emitter *activity.Emitter
	now     func() time.Time
	newID   func() string
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithEmitter sets the emitter receiving lifecycle events.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithHooks is shorthand for WithEmitter with an enabled emitter on the
// default channel.
func WithHooks(hooks ...activity.ActivityHook) Option {
	return WithEmitter(activity.NewEmitter(activity.Hooks(hooks), activity.Config{Enabled: true}))
}

// WithClock overrides the time source used for Meta.UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithIDGenerator overrides the snapshot id generator.
func WithIDGenerator(newID func() string) Option {
	return func(cfg *config) {
		if newID != nil {
			cfg.newID = newID
		}
	}
}
