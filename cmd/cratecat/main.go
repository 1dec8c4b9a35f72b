// cratecat opens a crate file, dumps its specs/fields/time-samples, and
// optionally serves a read-only inspectsrv HTTP endpoint over it and/or
// watches it for changes. Grounded on the teacher's cmd/bulk-delete and
// cmd/zmux-server mains: flag.Parse CLI surface, a NewDevelopmentConfig zap
// logger with the color level encoder and no timestamp/caller noise.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/scenecore/internal/config"
	"github.com/edirooss/scenecore/internal/diag"
	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/inspectsrv"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/specstore"
)

func main() {
	file := flag.String("file", "", "path to a crate file")
	detached := flag.Bool("detached", false, "open detached (copy out all bytes, no lazy resolution)")
	debug := flag.Bool("debug", false, "spew-dump CorruptFile errors")
	serve := flag.String("serve", "", "bind address for a read-only inspectsrv HTTP server, e.g. 127.0.0.1:7837 (empty disables)")
	watch := flag.Bool("watch", false, "watch -file for changes and reopen+reload on write")
	flag.Parse()

	log := buildLogger()
	defer log.Sync()
	log = log.Named("cratecat")

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: cratecat -file <path> [-detached] [-debug] [-serve addr] [-watch]")
		os.Exit(1)
	}

	it := sdfpath.Default()
	store, err := specstore.Open(*file, *detached, it, log)
	if err != nil {
		diag.LogChain(log, err)
		if *debug {
			if de, ok := err.(*diag.Error); ok {
				diag.DumpCorrupt(log, de)
			}
		}
		os.Exit(1)
	}

	dump(store, log)

	var srv *inspectsrv.Server
	if *serve != "" {
		addr := *serve
		if addr == "default" {
			addr = config.DefaultInspectAddr
		}
		srv = inspectsrv.New(addr, store, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Error("inspectsrv exited", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch {
		debounce := time.Duration(config.DefaultWatchDebounceMillis) * time.Millisecond
		err := crate.WatchReload(ctx, *file, it, log, debounce, func(doc *crate.Document, err error) {
			if err != nil {
				log.Warn("reload failed, keeping previous store", zap.Error(err))
				return
			}
			reloaded, rerr := specstore.FromDocument(doc, it, log)
			if rerr != nil {
				log.Warn("rebuild store from reloaded document failed", zap.Error(rerr))
				return
			}
			log.Info("reloaded crate file", zap.String("file", *file))
			dump(reloaded, log)
			if srv != nil {
				srv.Swap(reloaded)
			}
		})
		if err != nil {
			log.Fatal("watch failed", zap.Error(err))
		}
	}

	if srv == nil && !*watch {
		return
	}

	<-ctx.Done()
	if srv != nil {
		_ = srv.Shutdown()
	}
}

func dump(store *specstore.Store, log *zap.Logger) {
	n := 0
	store.Visit(func(p sdfpath.Path, t crate.SpecType) bool {
		n++
		names, _ := store.List(p)
		log.Info("spec", zap.String("path", p.String()), zap.String("type", t.String()), zap.Strings("fields", names))
		return true
	})
	times := store.ListAllTimeSamples()
	log.Info("crate summary", zap.Int("specs", n), zap.Int("distinctTimes", len(times)))
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	return zap.Must(logConfig.Build())
}
