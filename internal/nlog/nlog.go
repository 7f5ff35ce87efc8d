// Package nlog is the process logger for scenewire: leveled, timestamped,
// safe for concurrent use, and cheap enough to call on the hot send path.
// It intentionally does not attempt the teacher's full rotating-file
// machinery; a connection drop or bad CRC is a handful of log lines a
// second, not a firehose.
package nlog

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) tag() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

var (
	mu           sync.Mutex
	out          io.Writer = os.Stderr
	toStderr               = true
	alsoToStderr           = false
	minSeverity  severity  = sevInfo
)

// InitFlags registers the conventional logtostderr / alsologtostderr flags.
func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", true, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

// SetOutput redirects file-destined log lines (e.g. to a per-server log
// file); stderr behavior is controlled independently by the flags above.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetLevel raises the minimum severity written; pass true to silence Infof.
func SetLevel(warnAndAbove bool) {
	mu.Lock()
	if warnAndAbove {
		minSeverity = sevWarn
	} else {
		minSeverity = sevInfo
	}
	mu.Unlock()
}

func log(sev severity, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if sev < minSeverity {
		return
	}
	ts := time.Now().Format("0102 15:04:05.000000")
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg += "\n"
		}
	}
	line := fmt.Sprintf("%s%s %s", sev.tag(), ts, msg)
	if toStderr || alsoToStderr || sev >= sevErr {
		os.Stderr.WriteString(line)
	}
	if !toStderr && out != nil && out != io.Writer(os.Stderr) {
		io.WriteString(out, line)
	}
}

func Infof(format string, args ...any)    { log(sevInfo, format, args...) }
func Infoln(args ...any)                  { log(sevInfo, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, format, args...) }
func Warningln(args ...any)               { log(sevWarn, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, format, args...) }
func Errorln(args ...any)                 { log(sevErr, "", args...) }
