package rules

import (
	"fmt"
	"time"

	"github.com/goliatone/go-bag"
)

// Option configures a Runner.
type Option func(*config)

type config struct {
	evaluator    Evaluator
	evaluatorSet bool
	cache        ProgramCache
	functions    *FunctionRegistry
	logger       Logger
	args         map[string]any
	metadata     map[string]any
	now          func() time.Time
}

// WithEvaluator replaces the default expr evaluator. New fails with
// ErrNoEvaluator when evaluator is nil, as NewJSEvaluator returns without the
// js_eval tag.
func WithEvaluator(evaluator Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = evaluator
		cfg.evaluatorSet = true
	}
}

// WithProgramCache registers a program cache for the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
// Duplicate names keep the first registration.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithLogger attaches an evaluation logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithArgs sets the args binding visible to expressions.
func WithArgs(args map[string]any) Option {
	return func(cfg *config) {
		cfg.args = args
	}
}

// WithMetadata sets the metadata binding visible to expressions.
func WithMetadata(metadata map[string]any) Option {
	return func(cfg *config) {
		cfg.metadata = metadata
	}
}

// WithClock overrides the source of the now binding.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}

// Runner evaluates expressions against bags with a fixed evaluator
// configuration. A Runner is safe for concurrent use when its evaluator and
// cache are.
type Runner struct {
	cfg config
}

// New builds a Runner. Without WithEvaluator it uses the expr engine wired
// with the configured cache and functions.
func New(opts ...Option) (*Runner, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil && !cfg.evaluatorSet {
		var exprOpts []ExprOption
		if cfg.cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.cache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		cfg.evaluator = NewExprEvaluator(exprOpts...)
	}
	if cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return &Runner{cfg: cfg}, nil
}

// Evaluate runs expr against the effective values of src.
func (r *Runner) Evaluate(src bag.Source, expr string) (any, error) {
	return r.EvaluateWith(ContextFrom(src), expr)
}

// EvaluateBool runs expr against src and requires a boolean result.
func (r *Runner) EvaluateBool(src bag.Source, expr string) (bool, error) {
	value, err := r.Evaluate(src, expr)
	if err != nil {
		return false, err
	}
	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %T", ErrNotBool, value)
	}
	return result, nil
}

// EvaluateWith runs expr against ctx. Args, Metadata and Now left empty on
// ctx are filled from the Runner options.
func (r *Runner) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if ctx.Args == nil {
		ctx.Args = r.cfg.args
	}
	if ctx.Metadata == nil {
		ctx.Metadata = r.cfg.metadata
	}
	if ctx.Now == nil && r.cfg.now != nil {
		now := r.cfg.now()
		ctx.Now = &now
	}
	ctx = ctx.withDefaults()
	engine := engineName(r.cfg.evaluator)
	start := time.Now()
	value, err := r.cfg.evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	err = wrapEvaluationError(engine, expr, ctx.layerLabel(), err)
	r.cfg.logger.LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		Layer:    ctx.layerLabel(),
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Evaluate is a one-shot helper that builds a Runner from opts and evaluates
// expr against src.
func Evaluate(src bag.Source, expr string, opts ...Option) (any, error) {
	runner, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return runner.Evaluate(src, expr)
}

func engineName(e Evaluator) string {
	if named, ok := e.(interface{ engine() string }); ok {
		return named.engine()
	}
	if e == nil {
		return "unknown"
	}
	return "custom"
}
