// Package child implements the child process record and its state
// machine, respawn policy, and the fork/exec path that drops it into its
// configured chroot/chdir/uid/gid before exec. It is grounded on
// original_source/src/libsvc/childproc.{c,h} for semantics and on
// kornnellio-gosv's process.go/supervisor.go for the Go process-group
// idiom (syscall.Kill(-pid, sig)); the group is the new session the exec
// trampoline creates with setsid.
package child

import (
	"time"

	"github.com/sirupsen/logrus"
)

// State is the child's lifecycle state. Names follow spec.md's state
// machine: INITIAL -> STARTING -> UP <-> READY, CRASHED ->(delay)->
// STARTING or ->(cap hit)-> DOWN, any state --term--> STOPPING -> DOWN.
type State int

const (
	StateInitial State = iota
	StateStarting
	StateUp
	StateReady
	StateCrashed
	StateStopping
	StateDown
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateStarting:
		return "starting"
	case StateUp:
		return "up"
	case StateReady:
		return "ready"
	case StateCrashed:
		return "crashed"
	case StateStopping:
		return "stopping"
	case StateDown:
		return "down"
	default:
		return "unknown"
	}
}

// Config is the static, user-supplied description of the child. Fields
// map onto spec.md §6's CLI/config table plus the original's childproc_t
// fields (chroot/chdir/uid/gid/stdio redirection).
type Config struct {
	ProgName string
	Argv     []string

	Chroot string
	Chdir  string
	UID    int // uidgid.None ("-1") means "do not change"
	GID    int

	// StdoutPath/StderrPath redirect the child's stdout/stderr to a file
	// path, mirroring supervise.c's --stdout=/--stderr= (redirect_descriptor).
	// Empty means inherit the supervisor's own stream.
	StdoutPath string
	StderrPath string

	RespawnDelay  time.Duration
	RespawnMax    int
	RespawnPeriod time.Duration
	KillDelay     time.Duration
}

// Record is the live state of the single supervised child: the static
// Config plus everything the controller mutates as the child runs,
// crashes, and respawns.
type Record struct {
	Config

	PID          int
	St           State
	RestartCount int
	RespawnLast  time.Time
	LastExitCode int

	log *logrus.Entry
}

// NewRecord builds a Record in StateInitial, ready for Controller.Start.
func NewRecord(cfg Config, log *logrus.Entry) *Record {
	return &Record{Config: cfg, St: StateInitial, log: log}
}
