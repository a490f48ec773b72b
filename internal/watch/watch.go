// Package watch keeps batchconv running against one directory, starting a
// batch whenever new source files of the selected kind settle.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/batchconv/internal/kind"
	"github.com/backmassage/batchconv/internal/logging"
	"github.com/backmassage/batchconv/internal/naming"
)

// DefaultDebounce is the quiet period after the last file event before a
// batch starts.
const DefaultDebounce = 2 * time.Second

// BatchFunc runs one batch. It is never called concurrently with itself.
type BatchFunc func(ctx context.Context)

// Watcher triggers Batch for Dir. One batch runs at start; afterwards every
// burst of matching file events is debounced into one trigger, and triggers
// arriving while a batch runs collapse into a single follow-up batch.
type Watcher struct {
	Dir      string
	Kind     kind.Kind
	Debounce time.Duration
	Batch    BatchFunc
	Log      *logging.Logger
	Verbose  bool
}

// Run blocks until ctx is canceled, then waits for any running batch to
// return. It only fails if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	log := w.Log
	if log == nil {
		log = logging.Nop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	trigger := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.batchLoop(ctx, trigger)
	}()
	defer wg.Wait()

	notify(trigger)
	log.Info("Watching %s for %s files (debounce %s)", w.Dir, w.Kind.SourceExt(), debounce)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug(w.Verbose, "%s %s", ev.Op, filepath.Base(ev.Name))
			// Debounce: restart the quiet period on each event.
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			notify(trigger)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) batchLoop(ctx context.Context, trigger <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			if ctx.Err() != nil {
				return
			}
			w.Batch(ctx)
		}
	}
}

// relevant reports whether ev concerns a source file of the watched kind.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if naming.IsTempSibling(ev.Name) {
		return false
	}
	return w.Kind.Matches(ev.Name)
}

// notify queues a trigger unless one is already pending.
func notify(trigger chan<- struct{}) {
	select {
	case trigger <- struct{}{}:
	default:
	}
}
