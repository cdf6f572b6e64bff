// Package logging provides the structured logger astrocore's long-lived
// components (Propagator, Sequence, LeastSquaresSolver) narrate their
// progress through, ported from smd/spacecraft.go's SCLogInit: a
// logfmt-over-stdout kit/log.Logger tagged with the owning component's
// name, logging "level"/"subsys"/... key-value pairs rather than free-form
// strings.
package logging

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Logger is the structured logger astrocore components accept, matching
// smd's kitlog.Logger usage directly rather than wrapping it behind a
// project-specific interface.
type Logger = kitlog.Logger

// New returns a logfmt Logger writing to stdout, tagged with "subsys" and
// the given component name, the same construction smd.SCLogInit uses
// (kitlog.NewLogfmtLogger over a kitlog.NewSyncWriter, widened with
// kitlog.With).
func New(subsys, name string) Logger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(l, "subsys", subsys, "name", name)
}

// Discard is a Logger that drops everything, used as the zero-value
// default so components remain usable without explicit log wiring.
var Discard Logger = kitlog.NewNopLogger()
