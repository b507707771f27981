package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/specialistvlad/hclgraph/modules/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type mapResolver map[string]any

func (m mapResolver) ResolveName(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func TestEvaluate(t *testing.T) {
	target := objmodel.New("Button", nil)
	obj := objmodel.New(lookup.TypeName, nil)
	obj.Set("ref", cty.StringVal("ok"))

	got, err := lookup.Evaluate(context.Background(), obj, mapResolver{"ok": target})
	require.NoError(t, err)
	assert.Same(t, target, got)
}

func TestEvaluate_PendingName(t *testing.T) {
	obj := objmodel.New(lookup.TypeName, nil)
	obj.Set("ref", cty.StringVal("later"))

	_, err := lookup.Evaluate(context.Background(), obj, mapResolver{})
	var pending *registry.PendingNamesError
	require.True(t, errors.As(err, &pending))
	assert.Equal(t, []string{"later"}, pending.Names)
}

func TestEvaluate_MissingRef(t *testing.T) {
	obj := objmodel.New(lookup.TypeName, nil)

	_, err := lookup.Evaluate(context.Background(), obj, mapResolver{})
	assert.ErrorContains(t, err, "ref is required")
}
