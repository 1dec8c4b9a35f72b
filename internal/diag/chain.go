package diag

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

// LogChain walks an error chain and writes one structured log line per
// layer. Adapted from the teacher's pkg/fmtt.PrintErrChain: same "walk
// Unwrap() until nil" loop, retargeted at zap instead of fmt.Printf so it
// composes with the rest of the package's structured logging.
func LogChain(log *zap.Logger, err error) {
	if err == nil {
		return
	}
	i := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fields := []zap.Field{zap.Int("depth", i), zap.String("type", fmt.Sprintf("%T", e))}
		if de, ok := e.(*Error); ok {
			fields = append(fields, zap.String("kind", de.Kind.String()))
			for k, v := range de.Context {
				fields = append(fields, zap.Any(k, v))
			}
		}
		log.Error(e.Error(), fields...)
		i++
	}
}

// DumpCorrupt spew-dumps a CorruptFile error's structure, including its
// Context bag, for -debug tooling. Mirrors the teacher's
// PrintErrChainDebug, which reaches for go-spew once plain error text stops
// being enough to diagnose a malformed record.
func DumpCorrupt(log *zap.Logger, err *Error) {
	if err == nil || err.Kind != CorruptFile {
		return
	}
	log.Sugar().Debugf("corrupt file detail:\n%s", spew.Sdump(err))
}
