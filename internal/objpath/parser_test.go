package objpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectErr    bool
		expectedAddr *Address
	}{
		{
			name: "simple path",
			raw:  "a.b.c",
			expectedAddr: &Address{
				Path: []PathSegment{NewPathSegment("a"), NewPathSegment("b"), NewPathSegment("c")},
			},
		},
		{
			name: "multi-level path with index",
			raw:  "content.items[0].rows[15]",
			expectedAddr: &Address{
				Path: []PathSegment{NewPathSegment("content"), NewPathSegmentWithIndex("items", 0), NewPathSegmentWithIndex("rows", 15)},
			},
		},
		{
			name:         "empty string is the root",
			raw:          "",
			expectedAddr: Root(),
		},
		{
			name:      "error - empty path segment",
			raw:       "a..b",
			expectErr: true,
		},
		{
			name:      "error - invalid index",
			raw:       "a.b[x]",
			expectErr: true,
		},
		{
			name:      "error - leading digit",
			raw:       "a.9b",
			expectErr: true,
		},
		{
			name:      "error - just hyphen",
			raw:       "-",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, addr)
			assert.True(t, tc.expectedAddr.Equal(addr), "parsed address does not match expected address")
		})
	}
}
