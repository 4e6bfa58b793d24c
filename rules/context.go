// Package rules evaluates expressions against the effective values of a bag.
//
// The values exposed to an expression are those of bag.Snapshot: every stored
// type implementing bag.Exported, keyed by its export name. Three engines are
// available: expr (default), CEL, and JavaScript through goja when built with
// the js_eval tag.
package rules

import (
	"reflect"
	"time"

	"github.com/goliatone/go-bag"
)

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Layer names the layer the snapshot was read from, for diagnostics.
	Layer string
}

// ContextFrom builds a RuleContext from the effective values of src. Layer is
// set to the name of the newest layer. Values of named scalar types are
// converted to their underlying kind and slices to []any so expressions can
// compare them with literals.
func ContextFrom(src bag.Source) RuleContext {
	snapshot := bag.Snapshot(src)
	for key, value := range snapshot {
		snapshot[key] = normalize(value)
	}
	ctx := RuleContext{Snapshot: snapshot}
	if src == nil {
		return ctx
	}
	for l := range src.Layers() {
		if l != nil {
			ctx.Layer = l.Name()
			break
		}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx RuleContext) layerLabel() string {
	if ctx.Layer != "" {
		return ctx.Layer
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func normalize(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	default:
		return value
	}
}
