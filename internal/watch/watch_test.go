package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("/d/doc.hcl", false, "/d/doc.hcl"))
	assert.False(t, relevant("/d/doc.hcl", false, "/d/other.hcl"))
	assert.True(t, relevant("/d", true, "/d/a.hcl"))
	assert.False(t, relevant("/d", true, "/d/a.hcl.swp"))
}

func TestRun_MissingPath(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"), 0, func(context.Context, []string) error {
		return nil
	})
	require.Error(t, err)
}

func TestRun_ReportsChangedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.hcl")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, file, 20*time.Millisecond, func(_ context.Context, changed []string) error {
			select {
			case got <- changed:
			default:
			}
			return nil
		})
	}()

	// The watcher has no ready signal, so keep touching the file until it reports.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case changed := <-got:
			assert.Equal(t, []string{file}, changed)
			cancel()
			require.NoError(t, <-done)
			return
		case <-ticker.C:
			require.NoError(t, os.WriteFile(file, []byte("b"), 0o600))
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
}
