package cli

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor save produces into a
// single re-check.
const watchDebounce = 200 * time.Millisecond

// watchCheck runs an initial check and then re-checks path on every change
// until ctx is canceled. Cycles and read errors are reported but do not end
// the watch; only context cancellation or a broken watcher does.
func (c *CLI) watchCheck(ctx context.Context, path string, opts *checkOpts) error {
	runner := c.newRunner(opts.noCache, opts.noHistory)
	defer runner.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory to handle atomic saves (where the file is replaced).
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	if err := c.checkOnce(ctx, runner, path, opts); err != nil && !stderrors.Is(err, ErrCycleFound) {
		printError("%v", err)
	}
	printInfo("Watching %s for changes", path)

	target := filepath.Clean(path)
	var debounced <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only care about our specific file
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounced = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)

		case <-debounced:
			debounced = nil
			if err := c.checkOnce(ctx, runner, path, opts); err != nil && !stderrors.Is(err, ErrCycleFound) {
				printError("%v", err)
			}
		}
	}
}
