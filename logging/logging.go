// The MIT License (MIT)
//
// Copyright (c) 2024-2026 nodeforge
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// The nodeforge opcua logging package provides connection-oriented log
// service:
//
//	logging.Info.Println(Context, ...)
//	logging.Trace.Println(Context, ...)
//	logging.Warn.Println(Context, ...)
//	logging.Error.Println(Context, ...)
//
// The Context is optional and may be nil.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Context identifies the goroutine-scoped connection or channel a log line
// belongs to, the same role as a correlation id.
type Context interface {
	// Cid returns the connection or channel id for the current goroutine.
	Cid() int
}

// Logger is the per-level sink this package exposes.
type Logger interface {
	Println(ctx Context, a ...interface{})
}

type logrusPlus struct {
	base  *logrus.Logger
	level logrus.Level
}

func newLogrusPlus(w io.Writer, level logrus.Level) *logrusPlus {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(logrus.TraceLevel)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusPlus{base: base, level: level}
}

func (v *logrusPlus) Println(ctx Context, a ...interface{}) {
	entry := v.base.WithField("pid", os.Getpid())
	if ctx != nil {
		entry = entry.WithField("cid", ctx.Cid())
	}
	entry.Log(v.level, a...)
}

// Info is the verbose level, discarded by default.
var Info Logger

// Trace is the default, always-on level.
var Trace Logger

// Warn is the warning level.
var Warn Logger

// Error is the fatal-error level.
var Error Logger

func init() {
	Info = newLogrusPlus(io.Discard, logrus.DebugLevel)
	Trace = newLogrusPlus(os.Stdout, logrus.InfoLevel)
	Warn = newLogrusPlus(os.Stderr, logrus.WarnLevel)
	Error = newLogrusPlus(os.Stderr, logrus.ErrorLevel)
}

var previousIo io.Closer

// Switch redirects Trace/Warn/Error onto w; Info remains discarded. The
// caller owns w and must close it after a subsequent Switch or Close.
func Switch(w io.Writer) {
	Trace = newLogrusPlus(w, logrus.InfoLevel)
	Warn = newLogrusPlus(w, logrus.WarnLevel)
	Error = newLogrusPlus(w, logrus.ErrorLevel)

	if c, ok := w.(io.Closer); ok {
		previousIo = c
	}
}

// Close discards all levels and closes whatever writer a prior Switch
// installed.
func Close() error {
	Info = newLogrusPlus(io.Discard, logrus.DebugLevel)
	Trace = newLogrusPlus(io.Discard, logrus.InfoLevel)
	Warn = newLogrusPlus(io.Discard, logrus.WarnLevel)
	Error = newLogrusPlus(io.Discard, logrus.ErrorLevel)

	if previousIo != nil {
		err := previousIo.Close()
		previousIo = nil
		return err
	}
	return nil
}
