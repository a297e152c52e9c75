package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce batches filesystem event bursts into one rescan.
const watchDebounce = 2 * time.Second

// Watch blocks watching the scan path roots and invokes rescan after
// changes settle. It returns when ctx is cancelled or the watcher fails.
func (s *Scanner) Watch(ctx context.Context, rescan func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, sp := range s.paths {
		if err := watcher.Add(sp.Path); err != nil {
			s.logger.Warn("cannot watch scan path",
				zap.String("path", sp.Path),
				zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("%w: nothing to watch", ErrNoScanPaths)
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only structural changes matter for project discovery.
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("scan path changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			if err := rescan(ctx); err != nil {
				s.logger.Error("rescan failed", zap.Error(err))
			}
		}
	}
}
