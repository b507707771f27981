package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the evaluators and expression functions for a single
// application instance.
type Registry struct {
	Evaluators map[string]*RegisteredEvaluator
	Functions  map[string]function.Function
}

// New creates a Registry whose function table holds the standard functions.
func New() *Registry {
	return &Registry{
		Evaluators: make(map[string]*RegisteredEvaluator),
		Functions:  StandardFunctions(),
	}
}

// StandardFunctions returns the functions every document may call.
func StandardFunctions() map[string]function.Function {
	return map[string]function.Function{
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"concat":    stdlib.ConcatFunc,
		"coalesce":  stdlib.CoalesceFunc,
		"max":       stdlib.MaxFunc,
		"min":       stdlib.MinFunc,
		"trimspace": stdlib.TrimSpaceFunc,
	}
}

// RegisterEvaluator registers the evaluator for objects of typeName.
func (r *Registry) RegisterEvaluator(typeName string, ev *RegisteredEvaluator) {
	if _, exists := r.Evaluators[typeName]; exists {
		panic(fmt.Sprintf("evaluator for type '%s' already registered", typeName))
	}
	slog.Debug("Registering evaluator.", "type", typeName)
	r.Evaluators[typeName] = ev
}

// RegisterFunction adds fn to the expression function table.
func (r *Registry) RegisterFunction(name string, fn function.Function) {
	if _, exists := r.Functions[name]; exists {
		panic(fmt.Sprintf("function '%s' already registered", name))
	}
	slog.Debug("Registering function.", "name", name)
	r.Functions[name] = fn
}

// Evaluator returns the evaluator registered for typeName.
func (r *Registry) Evaluator(typeName string) (*RegisteredEvaluator, bool) {
	if r == nil {
		return nil, false
	}
	ev, ok := r.Evaluators[typeName]
	return ev, ok
}

// EvaluatorTypes returns the registered type names, sorted.
func (r *Registry) EvaluatorTypes() []string {
	types := make([]string, 0, len(r.Evaluators))
	for t := range r.Evaluators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// FunctionNames returns the names in the function table, sorted.
func (r *Registry) FunctionNames() []string {
	names := make([]string, 0, len(r.Functions))
	for n := range r.Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
