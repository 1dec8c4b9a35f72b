package crate

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/edirooss/scenecore/internal/config"
	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/sdfpath"
)

// WatchReload watches assetPath's directory and invokes onReload with a
// freshly re-Open'd Document every time the file's content changes,
// debounced to coalesce editor save bursts into one reload. Grounded on the
// teacher's SpecSyncService.watch (internal/service/spec_sync.go): same
// fsnotify-on-directory-not-file idiom (so renames and atomic editor saves
// are seen), same single-reused-timer debounce, same ctx-cancels-watcher
// lifetime contract. Unlike the teacher's watcher, scenecore's reload
// always opens detached: a watched store is meant to be swapped wholesale
// on change, not left pinned to a file some other writer may be mid-rename
// on (spec.md §9 Open Question on save-while-mapped).
//
// onReload runs on the watcher's goroutine; a slow onReload delays
// observing the next debounced event. WatchReload returns once the watcher
// is registered; it does not block.
func WatchReload(ctx context.Context, assetPath string, it *sdfpath.Interner, log *zap.Logger, debounce time.Duration, onReload func(*Document, error)) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("crate.watch")
	if debounce <= 0 {
		debounce = time.Duration(config.DefaultWatchDebounceMillis) * time.Millisecond
	}

	abs, err := filepath.Abs(assetPath)
	if err != nil {
		return diag.Wrap(diag.IOError, err, "resolve watch path "+assetPath)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return diag.Wrap(diag.IOError, err, "create fsnotify watcher")
	}

	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		w.Close()
		return diag.Wrap(diag.IOError, err, "watch directory "+dir)
	}

	go func() {
		defer w.Close()

		reload := func() {
			doc, r, err := Open(abs, true, it, log)
			if err != nil {
				log.Warn("watched reload failed", zap.String("path", abs), zap.Error(err))
				onReload(doc, err)
				return
			}
			// Open(detached=true) never returns a live *Reader; nothing to
			// Close here, unlike a caller-driven non-detached Open.
			_ = r
			onReload(doc, nil)
		}

		var timer *time.Timer
		reset := func() {
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != abs {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					reset()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", zap.Error(err))
			}
		}
	}()

	return nil
}
