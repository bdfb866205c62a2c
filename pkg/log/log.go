// Package log provides leveled logging shared by the listener and gateway
// binaries. Time/date are omitted by default because systemd (or whatever
// supervises the process) timestamps its own journal lines; call
// SetLogDateTime(true) to enable them.
//
// Uses these prefixes: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
	CritWriter  io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	WarnPrefix  string = "<4>[WARNING]  "
	ErrPrefix   string = "<3>[ERROR]    "
	CritPrefix  string = "<2>[CRITICAL] "
)

var (
	debugLog *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	infoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	warnLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	errLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.Llongfile)
	critLog  *log.Logger = log.New(CritWriter, CritPrefix, log.Llongfile)

	debugTimeLog *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	infoTimeLog  *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	warnTimeLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
	critTimeLog  *log.Logger = log.New(CritWriter, CritPrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel redirects writers below lvl to io.Discard. Valid values, from
// quietest to loudest: "crit", "err", "warn", "info", "debug".
func SetLevel(lvl string) {
	switch lvl {
	case "crit":
		ErrWriter = io.Discard
		fallthrough
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing to discard
	default:
		fmt.Printf("pkg/log: invalid loglevel %q, using 'debug'\n", lvl)
		SetLevel("debug")
	}
}

func SetLogDateTime(v bool) { logDateTime = v }

func out(w io.Writer, plain, timed *log.Logger, s string) {
	if w == io.Discard {
		return
	}
	if logDateTime {
		timed.Output(3, s)
	} else {
		plain.Output(3, s)
	}
}

func Debug(v ...interface{}) { out(DebugWriter, debugLog, debugTimeLog, fmt.Sprint(v...)) }
func Info(v ...interface{})  { out(InfoWriter, infoLog, infoTimeLog, fmt.Sprint(v...)) }
func Warn(v ...interface{})  { out(WarnWriter, warnLog, warnTimeLog, fmt.Sprint(v...)) }
func Error(v ...interface{}) { out(ErrWriter, errLog, errTimeLog, fmt.Sprint(v...)) }
func Crit(v ...interface{})  { out(CritWriter, critLog, critTimeLog, fmt.Sprint(v...)) }

func Debugf(format string, v ...interface{}) {
	out(DebugWriter, debugLog, debugTimeLog, fmt.Sprintf(format, v...))
}
func Infof(format string, v ...interface{}) {
	out(InfoWriter, infoLog, infoTimeLog, fmt.Sprintf(format, v...))
}
func Warnf(format string, v ...interface{}) {
	out(WarnWriter, warnLog, warnTimeLog, fmt.Sprintf(format, v...))
}
func Errorf(format string, v ...interface{}) {
	out(ErrWriter, errLog, errTimeLog, fmt.Sprintf(format, v...))
}
func Critf(format string, v ...interface{}) {
	out(CritWriter, critLog, critTimeLog, fmt.Sprintf(format, v...))
}

// Fatal logs at error level and terminates the process. The binaries use
// it (via Fatalf) for startup failures: config validation, storage, NATS,
// scheduler and listen errors.
func Fatal(v ...interface{}) {
	Error(v...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	Errorf(format, v...)
	os.Exit(1)
}
