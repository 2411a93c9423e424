// Package dplog wires the compiler's diagnostic output through logrus,
// taking a scoped *logrus.Entry per component rather than calling the
// package-level logrus.StandardLogger() directly.
package dplog

import "github.com/sirupsen/logrus"

// Verbose is the recognized 0..3 verbosity scale of the compiler's config.
type Verbose int

const (
	Quiet Verbose = iota
	Info
	Debug
	Trace
)

// New returns a *logrus.Entry scoped to component, with its level set from
// verbose. Warnings are produced only as diagnostic prints at verbose>0;
// they do not propagate as errors.
func New(component string, verbose Verbose) *logrus.Entry {
	logger := logrus.New()
	switch {
	case verbose >= Trace:
		logger.SetLevel(logrus.TraceLevel)
	case verbose >= Debug:
		logger.SetLevel(logrus.DebugLevel)
	case verbose >= Info:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.ErrorLevel)
	}
	return logger.WithField("component", component)
}

// Noop returns an *logrus.Entry that discards everything, for callers (e.g.
// unit tests) that don't want log lines on stderr.
func Noop() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(discard{})
	return logger.WithField("component", "noop")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
