package objmodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/hclgraph/internal/objpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestObject_SetKeepsOrder(t *testing.T) {
	o := New("Window", objpath.Root())
	o.Set("title", cty.StringVal("a"))
	o.Set("width", cty.NumberIntVal(3))
	o.Set("title", cty.StringVal("b"))

	assert.Equal(t, []string{"title", "width"}, o.Members())
	v, ok := o.Get("title")
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("b"), v)
}

func TestObject_DeclareFixesOrder(t *testing.T) {
	o := New("Window", objpath.Root())
	o.Declare("content")
	o.Set("title", cty.StringVal("a"))
	o.Reserve("items")
	o.Declare("items")
	o.Set("content", cty.True)

	assert.Equal(t, []string{"content", "title", "items"}, o.Members())
	v, ok := o.Get("content")
	require.True(t, ok)
	assert.Equal(t, cty.True, v)
}

func TestObject_ReserveAndSetAt(t *testing.T) {
	o := New("Panel", objpath.Root())
	first := o.Reserve("items")
	second := o.Reserve("items")
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	child := New("Button", objpath.Root().Child("items", second))
	require.NoError(t, o.SetAt("items", second, child))

	items, _ := o.Get("items")
	assert.Equal(t, []any{nil, child}, items)

	require.Error(t, o.SetAt("items", 5, child))
	require.Error(t, o.SetAt("title", 0, child))
}

func TestObject_AdoptAndString(t *testing.T) {
	parent := New("Window", objpath.Root())
	child := New("Button", objpath.Root().Child("content", -1))
	parent.Adopt(child)
	parent.Adopt(parent)

	assert.Same(t, parent, child.Owner)
	assert.Nil(t, parent.Owner)
	assert.Equal(t, "Button at content", child.String())

	child.Name = "ok"
	assert.Equal(t, `Button "ok"`, child.String())
	assert.Equal(t, "Window", parent.String())
}

func TestToCty(t *testing.T) {
	btn := New("Button", objpath.Root())
	btn.Set("text", cty.StringVal("OK"))
	btn.Set("tags", []any{cty.StringVal("a"), nil})
	btn.Value = cty.NumberIntVal(7)

	got := ToCty(btn)
	require.True(t, got.Type().IsObjectType())
	assert.Equal(t, cty.StringVal("OK"), got.GetAttr("text"))
	assert.Equal(t, cty.NumberIntVal(7), got.GetAttr("value"))
	assert.Equal(t, 2, got.GetAttr("tags").LengthInt())

	assert.Equal(t, cty.EmptyObjectVal, ToCty(New("Empty", nil)))
	assert.True(t, ToCty(nil).IsNull())
}

func TestToCty_CycleBecomesNull(t *testing.T) {
	a := New("A", nil)
	b := New("B", nil)
	a.Set("peer", b)
	b.Set("peer", a)

	got := ToCty(a)
	assert.True(t, got.GetAttr("peer").GetAttr("peer").IsNull())
}

func TestToNative(t *testing.T) {
	child := New("Button", nil)
	child.Name = "ok"
	v := []any{
		cty.StringVal("s"),
		cty.NumberIntVal(3),
		cty.NumberFloatVal(1.5),
		cty.True,
		cty.ObjectVal(map[string]cty.Value{"k": cty.ListVal([]cty.Value{cty.StringVal("x")})}),
		child,
		nil,
		cty.NullVal(cty.String),
	}

	got := ToNative(v, func(o *Object) any { return "ref:" + o.Name })
	want := []any{"s", int64(3), 1.5, true, map[string]any{"k": []any{"x"}}, "ref:ok", nil, nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToNative mismatch (-want +got):\n%s", diff)
	}
}

func TestFind(t *testing.T) {
	root := New("Window", objpath.Root())
	panel := New("Panel", objpath.Root().Child("content", -1))
	btn := New("Button", panel.Path.Child("items", 0))
	root.Set("content", panel)
	panel.Reserve("items")
	require.NoError(t, panel.SetAt("items", 0, btn))
	btn.Set("text", cty.StringVal("OK"))

	testCases := []struct {
		path      string
		want      any
		expectErr bool
	}{
		{path: "", want: root},
		{path: "content", want: panel},
		{path: "content.items[0]", want: btn},
		{path: "content.items[0].text", want: cty.StringVal("OK")},
		{path: "content.items[3]", expectErr: true},
		{path: "content.missing", expectErr: true},
		{path: "content.items[0].text.deeper", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			addr, err := objpath.Parse(tc.path)
			require.NoError(t, err)
			got, err := Find(root, addr)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
