package log

import (
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
)

// Setup installs the handler all harness logging goes through and sets the
// verbosity. Called once from the CLI before anything else logs.
func Setup(handler log.Handler, level log.Level) {
	log.SetHandler(handler)
	log.SetLevel(level)
}

func Debugf(msg string, v ...interface{}) {
	log.Debugf(msg, v...)
}

func Infof(msg string, v ...interface{}) {
	log.Infof(msg, v...)
}

func Errorf(msg string, v ...interface{}) {
	log.Errorf(msg, v...)
}

func Fatalf(msg string, v ...interface{}) {
	log.Fatalf(msg, v...)
}

// TextHandler renders one plain line per entry, optionally prefixed with an
// RFC3339 timestamp. Fields follow the message as k=v pairs.
type TextHandler struct {
	out       io.StringWriter
	timestamp bool
}

func NewTextHandler(out io.StringWriter, timestamp bool) log.Handler {
	return &TextHandler{out, timestamp}
}

func (th *TextHandler) HandleLog(e *log.Entry) error {
	if th.timestamp {
		_, err := th.out.WriteString(fmt.Sprintf("%s ", e.Timestamp.Format(time.RFC3339)))
		if err != nil {
			return err
		}
	}

	_, err := th.out.WriteString(e.Message)
	if err != nil {
		return err
	}

	for _, name := range e.Fields.Names() {
		_, err = th.out.WriteString(fmt.Sprintf(" %s=%v", name, e.Fields.Get(name)))
		if err != nil {
			return err
		}
	}

	_, err = th.out.WriteString("\n")
	return err
}
