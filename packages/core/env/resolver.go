package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/request/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} expressions. An expression is, in order of
// precedence, an OS environment lookup ({{$NAME}}), a builtin call
// ({{uuid()}}) or a variable name. Unresolved expressions are left as-is.
type Resolver struct {
	variables map[string]string
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called for unresolved expressions
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.variables[name] = value
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			name := expr[1:]
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			r.warn("unresolved environment variable: $%s", name)
			return match
		}

		if strings.Contains(expr, "(") {
			if result, ok := r.funcs.Call(expr); ok {
				return fmt.Sprintf("%v", result)
			}
			r.warn("unresolved function call: %s", expr)
			return match
		}

		if val, ok := r.variables[expr]; ok {
			return val
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// ResolveAll resolves every value of a map, keys untouched
func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolved reports whether input still contains expressions after resolution
func (r *Resolver) HasUnresolved(input string) bool {
	return variablePattern.MatchString(r.Resolve(input))
}
