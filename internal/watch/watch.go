package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/hclgraph/internal/ctxlog"
)

// DefaultDebounce is used when Run is given a non-positive debounce.
const DefaultDebounce = 250 * time.Millisecond

// Run watches path and calls onChange with the sorted set of changed .hcl
// files once events have been quiet for debounce. When path is a file only
// that file is reported. Run returns when ctx is done, or with the first
// watcher error or onChange error.
func Run(ctx context.Context, path string, debounce time.Duration, onChange func(ctx context.Context, changed []string) error) error {
	logger := ctxlog.FromContext(ctx)

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := target
	if !info.IsDir() {
		dir = filepath.Dir(target)
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Debug("Watching for changes.", "path", target)

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !relevant(target, info.IsDir(), name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if len(pending) > 0 {
				stopTimer(timer)
			}
			pending[name] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			logger.Debug("Change detected.", "files", changed)
			if err := onChange(ctx, changed); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func relevant(target string, isDir bool, name string) bool {
	if !isDir {
		return name == target
	}
	return strings.HasSuffix(name, ".hcl")
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
