// Package logging defines the diagnostic sink injected into pointio codecs.
//
// Codecs never log through a global. Decoders and encoders take a Logger
// through their options and default to Nop, so library users see no output
// unless they ask for it. The CLI installs the glog-backed logger.
package logging

import (
	"fmt"

	"github.com/golang/glog"
)

// Logger receives leveled diagnostics from codecs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

// DebugLevel is the glog verbosity at which Debugf messages are emitted.
const DebugLevel glog.Level = 2

type glogLogger struct {
	prefix string
}

// NewGlog returns a Logger backed by github.com/golang/glog.
//
// Debug messages are written only when glog runs with -v=2 or higher. A
// non-empty prefix is prepended to every message, which the CLI uses to tag
// lines with the file being converted in batch mode.
func NewGlog(prefix string) Logger {
	return glogLogger{prefix: prefix}
}

func (l glogLogger) msg(format string, args []any) string {
	if l.prefix == "" {
		return fmt.Sprintf(format, args...)
	}

	return l.prefix + ": " + fmt.Sprintf(format, args...)
}

func (l glogLogger) Debugf(format string, args ...any) {
	if glog.V(DebugLevel) {
		glog.InfoDepth(1, l.msg(format, args))
	}
}

func (l glogLogger) Infof(format string, args ...any) {
	glog.InfoDepth(1, l.msg(format, args))
}

func (l glogLogger) Warnf(format string, args ...any) {
	glog.WarningDepth(1, l.msg(format, args))
}

func (l glogLogger) Errorf(format string, args ...any) {
	glog.ErrorDepth(1, l.msg(format, args))
}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}

	return l
}
