package logger

import "github.com/rs/zerolog"

// Nop returns a logger that discards everything. Used as the default when no
// logger is configured.
func Nop() Logger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}
