package env_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/specialistvlad/hclgraph/modules/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEvaluate(t *testing.T) {
	m := &env.Module{LookupEnv: fakeEnv(map[string]string{"HOME": "/home/app"})}

	testCases := []struct {
		name    string
		members map[string]cty.Value
		want    cty.Value
		wantErr string
	}{
		{
			name:    "set",
			members: map[string]cty.Value{"variable": cty.StringVal("HOME")},
			want:    cty.StringVal("/home/app"),
		},
		{
			name:    "default",
			members: map[string]cty.Value{"variable": cty.StringVal("SHELL"), "default": cty.StringVal("sh")},
			want:    cty.StringVal("sh"),
		},
		{
			name:    "missing without default",
			members: map[string]cty.Value{"variable": cty.StringVal("SHELL")},
			wantErr: `environment variable "SHELL" is not set`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj := objmodel.New(env.TypeName, nil)
			for k, v := range tc.members {
				obj.Set(k, v)
			}
			got, err := m.Evaluate(context.Background(), obj, nil)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_UsesProcessEnvironment(t *testing.T) {
	t.Setenv("HCLGRAPH_TEST_VAR", "from-env")
	obj := objmodel.New(env.TypeName, nil)
	obj.Set("variable", cty.StringVal("HCLGRAPH_TEST_VAR"))

	got, err := (&env.Module{}).Evaluate(context.Background(), obj, nil)
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("from-env"), got)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&env.Module{}).Register(r)
	_, ok := r.Evaluator(env.TypeName)
	assert.True(t, ok)
	require.NoError(t, r.ValidateRegistry(context.Background()))
}
