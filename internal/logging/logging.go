// Package logging wires up the structured logrus logger used across the
// supervisor, with an additional hook that mirrors the same events to
// the system log facility, matching childproc_exec's/childproc_monitor's
// syslog(LOG_INFO, ...) call sites in the original.
package logging

import (
	"fmt"
	"log/syslog"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger for progName. If the system log facility
// cannot be reached (e.g. no syslog daemon in this environment), logging
// silently falls back to stderr only — a missing syslog socket must
// never prevent the supervisor from starting.
func New(progName string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if hook, err := newSyslogHook(progName); err == nil {
		log.AddHook(hook)
	}
	return log
}

// syslogHook forwards every log entry's message to the syslog facility
// at a matching priority.
type syslogHook struct {
	w *syslog.Writer
}

func newSyslogHook(tag string) (*syslogHook, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, fmt.Errorf("logging: syslog: %w", err)
	}
	return &syslogHook{w: w}, nil
}

func (h *syslogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *syslogHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	switch e.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return h.w.Err(line)
	case logrus.WarnLevel:
		return h.w.Warning(line)
	default:
		return h.w.Info(line)
	}
}
