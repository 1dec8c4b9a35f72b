package crate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

func TestWatchReloadFiresOnWrite(t *testing.T) {
	it := sdfpath.NewInterner()
	doc := buildSampleDocument(t, it)

	dir := t.TempDir()
	fileName := filepath.Join(dir, "scene.crate")
	if err := Save(fileName, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 1)
	err := WatchReload(ctx, fileName, it, nil, 20*time.Millisecond, func(_ *Document, err error) {
		select {
		case reloaded <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchReload: %v", err)
	}

	// Give the watcher a moment to register before triggering a write.
	time.Sleep(50 * time.Millisecond)

	doc.Specs[0].Fields = append(doc.Specs[0].Fields, FieldEntry{Name: "extra", Value: Eager(value.New(int64(1)))})
	if err := Save(fileName, doc); err != nil {
		t.Fatalf("Save (second): %v", err)
	}

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("onReload got error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onReload was never invoked after write")
	}
}

func TestWatchReloadRejectsUnreadableDir(t *testing.T) {
	it := sdfpath.NewInterner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	missing := filepath.Join(os.TempDir(), "scenecore-does-not-exist-dir", "scene.crate")
	err := WatchReload(ctx, missing, it, nil, time.Millisecond, func(*Document, error) {})
	if err == nil {
		t.Fatal("expected an error watching a nonexistent directory")
	}
}
