package env

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// TypeName is the object type handled by this module.
const TypeName = "Env"

// Module implements the registry.Module interface for this package.
type Module struct {
	// LookupEnv replaces os.LookupEnv when set.
	LookupEnv func(key string) (string, bool)
}

// Input defines the members read by the Env evaluator.
type Input struct {
	Variable string  `cty:"variable"`
	Default  *string `cty:"default"`
}

// Evaluate returns the value of the environment variable, or default.
func (m *Module) Evaluate(ctx context.Context, obj *objmodel.Object, _ registry.Resolver) (any, error) {
	var input Input
	if err := registry.DecodeInput(obj, &input); err != nil {
		return nil, err
	}

	lookup := m.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(input.Variable); ok {
		return cty.StringVal(v), nil
	}
	if input.Default != nil {
		ctxlog.FromContext(ctx).Debug("Environment variable not set, using default.", "variable", input.Variable)
		return cty.StringVal(*input.Default), nil
	}
	return nil, fmt.Errorf("%s: environment variable %q is not set and has no default", obj, input.Variable)
}

// Register registers the evaluator with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterEvaluator(TypeName, &registry.RegisteredEvaluator{
		NewInput: func() any { return new(Input) },
		Fn:       registry.EvaluatorFunc(m.Evaluate),
	})
}
