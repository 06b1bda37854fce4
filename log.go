package rlnc

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the narrow structured-logging seam a Node calls into. It is
// satisfied by *zerolog.Logger, mirroring the unimplemented
// `logger Logger` field the teacher's gjkr.Member carries; unlike that
// field, this one is wired all the way through to WithLogger.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
}

// nopLogger discards everything, the default for a Node constructed
// without WithLogger.
var nopLogger Logger = func() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}()

// NewConsoleLogger returns a human-readable, leveled logger suitable for
// interactive use of a gossip simulator built on this package, following
// the teacher's dependency on zerolog for anything beyond the nop default.
func NewConsoleLogger(level zerolog.Level) Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return &l
}
