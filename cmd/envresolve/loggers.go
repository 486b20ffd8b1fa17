package main

import "log"

// Loggers holds standard loggers and a verbosity flag, threaded into the
// resolve package's optional *log.Logger fields.
type Loggers struct {
	Out, Err *log.Logger
	Verbose  bool
}

func (l *Loggers) verbosef(format string, args ...interface{}) {
	if l.Verbose {
		l.Out.Printf(format, args...)
	}
}
