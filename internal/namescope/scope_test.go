package namescope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_RegisterAndFind(t *testing.T) {
	s := New()
	obj := &struct{ id int }{1}

	require.NoError(t, s.Register("btn", obj))

	found, ok := s.FindName("btn")
	require.True(t, ok)
	assert.Same(t, obj, found)

	_, ok = s.FindName("missing")
	assert.False(t, ok)
}

func TestScope_DuplicateInSameScope(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("x", 1))

	err := s.Register("x", 2)
	var dupErr *DuplicateNameError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "x", dupErr.Name)

	// The original binding is untouched.
	found, _ := s.FindName("x")
	assert.Equal(t, 1, found)
}

func TestScope_InvalidName(t *testing.T) {
	s := New()
	testCases := []string{"", "1abc", "has space", "a.b"}
	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			err := s.Register(name, 1)
			var invErr *InvalidNameError
			require.True(t, errors.As(err, &invErr))
		})
	}
}

func TestScope_Shadowing(t *testing.T) {
	root := New()
	left := root.NewChild()
	right := root.NewChild()

	rootObj, leftObj := "root-x", "left-x"
	require.NoError(t, root.Register("x", rootObj))
	require.NoError(t, left.Register("x", leftObj), "shadowing an ancestor name is allowed")

	found, ok := left.FindName("x")
	require.True(t, ok)
	assert.Equal(t, leftObj, found)

	found, ok = right.FindName("x")
	require.True(t, ok)
	assert.Equal(t, rootObj, found, "sibling scope sees the ancestor binding")
}

func TestScope_SiblingIsolation(t *testing.T) {
	root := New()
	left := root.NewChild()
	right := root.NewChild()
	require.NoError(t, left.Register("only_left", 1))

	_, ok := right.FindName("only_left")
	assert.False(t, ok)
	_, ok = root.FindName("only_left")
	assert.False(t, ok)
}

func TestScope_FindLocalAndEntries(t *testing.T) {
	root := New()
	child := root.NewChild()
	require.NoError(t, root.Register("a", 1))
	require.NoError(t, child.Register("c", 3))
	require.NoError(t, child.Register("b", 2))

	_, ok := child.FindLocal("a")
	assert.False(t, ok)
	assert.Same(t, root, child.Parent())
	assert.Nil(t, root.Parent())

	assert.Equal(t, []Entry{{Name: "c", Object: 3}, {Name: "b", Object: 2}}, child.AllEntries())
	assert.Equal(t, 2, child.Len())
}
