// Package supervisor implements the event loop: a single poll(2) over
// the signal gate's signalfd and (optionally) a manager IPC descriptor.
// It is grounded on original_source/src/supervise/supervise.c
// (supervisor_run, sighdl_chld/sighdl_term), with the documented bugs
// from spec.md's design notes fixed: the state-machine's
// `state != UP || state != READY` check (always true) is replaced by
// Controller.Ready's explicit from-STARTING guard, and SIGTERM/SIGQUIT
// are handled directly instead of through the original's unreachable
// per-signal dispatch table (supervisor_run only ever read the table
// entry for si.ssi_signo == SIGCHLD).
package supervisor

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/kornnellio/svcsuper/internal/child"
	"github.com/kornnellio/svcsuper/internal/ipc"
	"github.com/kornnellio/svcsuper/internal/sigfd"
)

// Supervisor owns the single Child record and runs its event loop.
type Supervisor struct {
	ctrl        *child.Controller
	gate        *sigfd.Gate
	managerConn *os.File
	table       ipc.Table
	log         *logrus.Entry
	exiting     bool
}

// New builds a Supervisor. managerConn may be nil, meaning no IPC.
func New(ctrl *child.Controller, gate *sigfd.Gate, managerConn *os.File, log *logrus.Entry) *Supervisor {
	s := &Supervisor{ctrl: ctrl, gate: gate, managerConn: managerConn, log: log}
	s.table = s.methodTable()
	return s
}

// Prepare blocks the watched signals, opens the signalfd, and applies
// umask — in that order, matching supervisor_prepare.
func Prepare(umask int) (*sigfd.Gate, error) {
	gate, err := sigfd.Open()
	if err != nil {
		return nil, fmt.Errorf("supervisor: prepare: %w", err)
	}
	unix.Umask(umask)
	return gate, nil
}

// Run starts the child and drives the poll loop until a TERM/QUIT signal
// arrives or the respawn cap is hit. An IPC "kill" leaves the child DOWN
// but does not end the loop: it keeps answering IPC, and a later
// "restart" starts the child again.
func (s *Supervisor) Run() error {
	if err := s.ctrl.Start(); err != nil {
		return fmt.Errorf("supervisor: initial start: %w", err)
	}

	pendingRestart := false
	for !s.exiting {
		s.ctrl.Ready()

		timeout := -1
		if pendingRestart {
			timeout = int(s.ctrl.Record().RespawnDelay / time.Millisecond)
		}

		pfds := []unix.PollFd{{Fd: int32(s.gate.FD), Events: unix.POLLIN}}
		watchingManager := s.managerConn != nil
		if watchingManager {
			pfds = append(pfds, unix.PollFd{Fd: int32(s.managerConn.Fd()), Events: unix.POLLIN})
		}

		if _, err := unix.Poll(pfds, timeout); err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("supervisor: poll: %w", err)
		}

		if watchingManager && pfds[1].Revents&unix.POLLIN != 0 {
			s.handleIPC()
		}

		if pfds[0].Revents&unix.POLLIN != 0 {
			info, err := s.gate.Read()
			if err != nil {
				return fmt.Errorf("supervisor: signal read: %w", err)
			}
			switch info.Signo {
			case unix.SIGCHLD:
				pendingRestart = s.handleChld()
				if pendingRestart {
					continue
				}
			case unix.SIGTERM, unix.SIGQUIT:
				s.handleTerm()
				continue
			}
		}

		if pendingRestart {
			if err := s.ctrl.Start(); err != nil {
				s.log.WithError(err).Error("respawn failed")
			}
			pendingRestart = false
		}
	}
	return nil
}

// handleChld reaps the child and decides whether a restart is pending.
// It folds sighdl_chld and childproc_monitor's observable effects into
// one step: the original's second, redundant childproc_monitor call (on
// an already-reaped pid, to walk CRASHED -> STOPPING -> DOWN) produces
// no externally visible difference from setting StateDown directly, so
// it is not reproduced here.
func (s *Supervisor) handleChld() (pendingRestart bool) {
	rec := s.ctrl.Record()
	if rec.PID == 0 {
		return false
	}
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(rec.PID, &ws, 0, nil)
	if err != nil {
		return false
	}

	_, giveUp := s.ctrl.Reap(pid, ws)
	if giveUp {
		s.exiting = true
		return false
	}
	if rec.St == child.StateDown {
		s.exiting = true
		return false
	}
	if rec.RespawnDelay > 0 {
		return true
	}
	if err := s.ctrl.Start(); err != nil {
		s.log.WithError(err).Error("respawn failed")
	}
	return false
}

func (s *Supervisor) handleTerm() {
	s.exiting = true
	s.ctrl.Kill(true)
}

// handleIPC services one pending request on the manager descriptor. A
// decode failure closes the descriptor outright rather than just
// dropping it from the watch set (spec.md's documented fix for the
// original's descriptor leak).
func (s *Supervisor) handleIPC() {
	req, err := ipc.ReadObject(s.managerConn)
	if err != nil {
		s.log.WithError(err).Warn("ipc decode failed, closing manager descriptor")
		_ = s.managerConn.Close()
		s.managerConn = nil
		return
	}

	rc, reply, err := ipc.Dispatch(s.table, req)
	if err != nil {
		s.log.WithError(err).Error("ipc handler failed")
		return
	}
	if rc != ipc.OK {
		method, _ := req[ipc.FieldMethod].(string)
		reply = ipc.ErrorObject(rc, method, ipc.IDOf(req))
	}
	if reply == nil {
		return
	}
	if err := ipc.WriteObject(s.managerConn, reply); err != nil {
		s.log.WithError(err).Error("ipc reply write failed")
	}
}
