// Package watcher reloads a file-backed table when the file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watch calls onChange once writes to path have settled for debounce. It
// watches the parent directory so editors that replace the file by rename
// are seen too. A nil log uses slog.Default(). Watch blocks until ctx is done.
func Watch(ctx context.Context, log *slog.Logger, path string, debounce time.Duration, onChange func(context.Context)) error {
	if log == nil {
		log = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info("watching data file", "path", abs, "debounce", debounce)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	settle := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			// The pending callback will not run; release its slot.
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(debounce, func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			log.Info("data file changed", "path", abs)
			onChange(ctx)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				log.Debug("data file event", "op", ev.Op.String())
				settle()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}
