package child

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Controller drives a single Record through Start/Monitor/Kill. It holds
// the *exec.Cmd for the currently running (or most recently run) child;
// kornnellio-gosv's Process.Start/Signal/Wait do the same job for each
// entry in its process map, generalized here to the spec's single child.
type Controller struct {
	rec *Record
	cmd *exec.Cmd
	log *logrus.Entry
}

func NewController(rec *Record, log *logrus.Entry) *Controller {
	return &Controller{rec: rec, log: log}
}

func (c *Controller) Record() *Record { return c.rec }

// Start forks the child via a re-exec of the supervisor binary in
// trampoline mode (see ExecStepFlag) and records the pid and fork time.
// respawn_last is set here, at fork, not after exec completes — matching
// childproc_start, which stamps it immediately after fork() returns in
// the parent.
func (c *Controller) Start() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("child: resolve self executable: %w", err)
	}
	args := BuildTrampolineArgs(self, c.rec.Config)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = nil
	if c.rec.StdoutPath != "" {
		f, err := os.OpenFile(c.rec.StdoutPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("child: open stdout %q: %w", c.rec.StdoutPath, err)
		}
		cmd.Stdout = f
	} else {
		cmd.Stdout = os.Stdout
	}
	if c.rec.StderrPath != "" {
		f, err := os.OpenFile(c.rec.StderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("child: open stderr %q: %w", c.rec.StderrPath, err)
		}
		cmd.Stderr = f
	} else {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("child: start: %w", err)
	}

	c.cmd = cmd
	c.rec.PID = cmd.Process.Pid
	c.rec.RespawnLast = time.Now()
	c.rec.St = StateStarting
	c.log.Info("starting, pid ", c.rec.PID)
	return nil
}

// Ready transitions the child from STARTING to UP, the only legal edge
// into UP (spec.md §9 flags the original's `state != UP || state !=
// READY` check as a tautology that can never be false; it is replaced
// here with an explicit from-state check).
func (c *Controller) Ready() {
	if c.rec.St == StateStarting {
		c.rec.St = StateUp
	}
}

// Reap consumes a wait4 result for this child's pid and advances its
// state. reaped is false if pid does not belong to this child, or if no
// child is currently recorded (PID 0); the record is then left as is.
func (c *Controller) Reap(pid int, ws syscall.WaitStatus) (reaped bool, giveUp bool) {
	if pid != c.rec.PID || c.rec.PID == 0 {
		return false, false
	}
	exitCode := ws.ExitStatus()
	if ws.Signaled() {
		exitCode = 128 + int(ws.Signal())
	}
	c.rec.LastExitCode = exitCode
	c.rec.PID = 0

	if c.rec.St == StateStopping {
		c.rec.St = StateDown
		c.log.Info("stopped, pid ", pid)
		return true, false
	}

	c.rec.St = StateCrashed
	now := time.Now()
	c.rec.RestartCount++
	if c.rec.RespawnPeriod > 0 && now.Sub(c.rec.RespawnLast) > c.rec.RespawnPeriod {
		c.rec.RestartCount = 0
	}
	if c.rec.RespawnMax > 0 && c.rec.RestartCount > c.rec.RespawnMax {
		c.rec.St = StateDown
		c.log.Info("restarted too many times, giving up")
		return true, true
	}
	return true, false
}

// Kill sends SIGTERM to the child's process group. If wait is true it
// gives the child KillDelay to exit on its own (checked once
// immediately, then once after sleeping) before escalating to SIGKILL
// and blocking for exit. It mirrors childproc_kill's two-stage
// WNOHANG/sleep/WNOHANG/KILL sequence.
func (c *Controller) Kill(wait bool) {
	if c.rec.PID == 0 {
		return
	}
	c.rec.St = StateStopping
	c.log.Info("stopping, pid ", c.rec.PID)
	_ = syscall.Kill(-c.rec.PID, syscall.SIGTERM)
	if !wait {
		return
	}

	if c.tryReap() {
		return
	}
	time.Sleep(c.rec.KillDelay)
	if c.tryReap() {
		return
	}

	_ = syscall.Kill(-c.rec.PID, syscall.SIGKILL)
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(c.rec.PID, &ws, 0, nil)
	if err == nil {
		c.Reap(pid, ws)
	}
}

func (c *Controller) tryReap() bool {
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(c.rec.PID, &ws, syscall.WNOHANG, nil)
	if err != nil || pid != c.rec.PID {
		return false
	}
	c.Reap(pid, ws)
	return true
}
