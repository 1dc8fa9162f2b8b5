// Package watch re-runs the pipeline whenever one of its input files
// changes. Events are debounced so editors that write in several steps
// trigger a single run; the cache gate keeps spurious wakeups cheap.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 200 * time.Millisecond

// Run watches the directories containing the given input files and invokes
// run after each relevant change until ctx is cancelled. The first run
// happens immediately. Run errors are logged, not fatal: the watcher keeps
// going so the next save can succeed.
func Run(ctx context.Context, inputs []string, log *zap.Logger, run func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool) // absolute input paths we care about
	dirs := make(map[string]bool)
	for _, p := range inputs {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	log.Info("watcher: started", zap.Int("inputs", len(watched)))

	if err := run(ctx); err != nil {
		log.Warn("watcher: run failed", zap.Error(err))
	}

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("watcher: stopped")
			return nil

		case <-fire:
			if err := run(ctx); err != nil {
				log.Warn("watcher: run failed", zap.Error(err))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("watcher: input changed",
				zap.String("path", abs),
				zap.String("op", ev.Op.String()))
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher: error", zap.Error(err))
		}
	}
}
