package format_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/modules/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestEvaluate(t *testing.T) {
	obj := objmodel.New(format.TypeName, nil)
	obj.Set("template", cty.StringVal("%s has %d items"))
	obj.Set("args", cty.TupleVal([]cty.Value{cty.StringVal("cart"), cty.NumberIntVal(3)}))

	got, err := format.Evaluate(context.Background(), obj, nil)
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("cart has 3 items"), got)
}

func TestEvaluate_NoArgs(t *testing.T) {
	obj := objmodel.New(format.TypeName, nil)
	obj.Set("template", cty.StringVal("plain"))

	got, err := format.Evaluate(context.Background(), obj, nil)
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("plain"), got)
}

func TestEvaluate_Errors(t *testing.T) {
	// --- Arrange ---
	noTemplate := objmodel.New(format.TypeName, nil)
	noTemplate.Set("args", cty.TupleVal([]cty.Value{cty.StringVal("x")}))

	// --- Act ---
	_, err := format.Evaluate(context.Background(), noTemplate, nil)

	// --- Assert ---
	assert.ErrorContains(t, err, "template is required")

	notList := objmodel.New(format.TypeName, nil)
	notList.Set("template", cty.StringVal("%s"))
	notList.Set("args", cty.StringVal("x"))
	_, err = format.Evaluate(context.Background(), notList, nil)
	assert.ErrorContains(t, err, "args must be a list")

	missingArg := objmodel.New(format.TypeName, nil)
	missingArg.Set("template", cty.StringVal("%s %s"))
	missingArg.Set("args", cty.TupleVal([]cty.Value{cty.StringVal("one")}))
	_, err = format.Evaluate(context.Background(), missingArg, nil)
	assert.Error(t, err)
}
