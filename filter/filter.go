// Package filter selects result items with expr expressions.
//
// Every top-level field of an object item is available as a variable, next
// to Item (the whole item) and Key (its mapping key or sequence index):
//
//	global_rating > 5000 and nickname contains "alex"
//	icontains(nickname, "ALEX") && daysSince(last_battle_time) < 30
package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled programs kept by a Compiler
const DefaultCacheSize = 100

// Filter is a compiled filter expression
type Filter struct {
	program *vm.Program
	expr    string
}

var _ Matcher = (*Filter)(nil)

// ExprCompiler compiles expressions and keeps recently used programs
type ExprCompiler struct {
	cache *lru.Cache[string, *Filter]
}

var _ Compiler = (*ExprCompiler)(nil)

// NewCompiler creates a compiler caching up to size programs
func NewCompiler(size int) (*ExprCompiler, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Filter](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter cache: %w", err)
	}
	return &ExprCompiler{cache: cache}, nil
}

// Compile implements Compiler
func (c *ExprCompiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if f, ok := c.cache.Get(expression); ok {
		return f, nil
	}

	f, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	c.cache.Add(expression, f)
	return f, nil
}

// Len returns the number of cached programs
func (c *ExprCompiler) Len() int {
	return c.cache.Len()
}

// Compile compiles a filter expression without caching
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(helpers()),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: err.Error(), Err: err}
	}

	return &Filter{
		program: program,
		expr:    expression,
	}, nil
}

// Match implements Matcher
func (f *Filter) Match(key, item any) (bool, error) {
	result, err := expr.Run(f.program, environment(key, item))
	if err != nil {
		return false, &EvaluationError{Expression: f.expr, Key: key, Reason: err.Error(), Err: err}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{Expression: f.expr, Key: key, Reason: fmt.Sprintf("expression returned %T, want bool", result)}
	}
	return matched, nil
}

// String returns the original expression
func (f *Filter) String() string {
	return f.expr
}

// Apply returns the items matching m. Items are keyed by their position.
func Apply(ctx context.Context, m Matcher, items []any) ([]any, error) {
	var matched []any
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := m.Match(i, item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// helpers are the functions available to every expression
func helpers() map[string]any {
	return map[string]any{
		"icontains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"daysSince": func(unix any) int {
			ts, ok := toInt64(unix)
			if !ok || ts <= 0 {
				return -1
			}
			return int(time.Since(time.Unix(ts, 0)).Hours() / 24)
		},
		"daysAgo": func(days int) int64 {
			return time.Now().AddDate(0, 0, -days).Unix()
		},
	}
}

func environment(key, item any) map[string]any {
	env := helpers()
	item = plain(item)
	if fields, ok := item.(map[string]any); ok {
		for name, value := range fields {
			if _, reserved := env[name]; !reserved {
				env[name] = value
			}
		}
	}
	env["Item"] = item
	env["Key"] = key
	return env
}

// plain replaces json.Number values so expressions can compare numbers
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	}
	return 0, false
}
