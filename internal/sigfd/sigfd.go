// Package sigfd implements the signal gate: a process-wide block of
// SIGCHLD/SIGTERM/SIGQUIT backed by a signalfd(2) descriptor, so the
// supervisor loop can multiplex signal delivery alongside the IPC
// descriptor in a single poll(2) call instead of a signal handler.
package sigfd

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Watched is the fixed signal set the gate blocks and reads: SIGCHLD to
// notice child exits, SIGTERM/SIGQUIT to trigger shutdown.
var Watched = []unix.Signal{unix.SIGCHLD, unix.SIGTERM, unix.SIGQUIT}

// Gate owns the signalfd descriptor once Open has blocked the watched
// signals process-wide.
type Gate struct {
	FD int
}

func mask(sigs []unix.Signal) unix.Sigset_t {
	var set unix.Sigset_t
	for _, s := range sigs {
		bit := uint(s) - 1
		set.Val[bit/64] |= 1 << (bit % 64)
	}
	return set
}

// Block blocks Watched on every OS thread of the calling process, not
// just the calling goroutine's current thread. A plain sigprocmask(2)
// only affects the thread that calls it, and the Go runtime schedules
// goroutines across many OS threads, so any one of them could still take
// the signal via its default disposition (SIGTERM would kill us).
func Block() error {
	set := mask(Watched)
	_, _, errno := unix.AllThreadsSyscall6(unix.SYS_RT_SIGPROCMASK,
		uintptr(unix.SIG_SETMASK), uintptr(unsafe.Pointer(&set)), 0,
		unsafe.Sizeof(set), 0, 0)
	if errno != 0 {
		return fmt.Errorf("sigfd: block: %w", errno)
	}
	return nil
}

// Unblock clears the calling thread's signal mask. Used by the re-exec
// trampoline after fork, before the target program's image is loaded:
// the child must start with a clean mask, not the supervisor's blocked
// one, or it will never see a plain SIGTERM.
func Unblock() error {
	var empty unix.Sigset_t
	return unix.PthreadSigmask(unix.SIG_SETMASK, &empty, nil)
}

// Open blocks Watched process-wide and returns a signalfd reading them.
func Open() (*Gate, error) {
	if err := Block(); err != nil {
		return nil, err
	}
	set := mask(Watched)
	fd, err := unix.Signalfd(-1, &set, unix.SFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("sigfd: signalfd: %w", err)
	}
	return &Gate{FD: fd}, nil
}

func (g *Gate) Close() error {
	return unix.Close(g.FD)
}

// Info is the subset of signalfd_siginfo the supervisor loop needs.
type Info struct {
	Signo unix.Signal
	PID   uint32
}

// Read blocks until a watched signal is pending and returns it. A short
// read is treated as fatal by the caller; signalfd never returns partial
// records once the fd is readable.
func (g *Gate) Read() (Info, error) {
	var buf [unix.SizeofSignalfdSiginfo]byte
	n, err := unix.Read(g.FD, buf[:])
	if err != nil {
		return Info{}, err
	}
	if n != len(buf) {
		return Info{}, fmt.Errorf("sigfd: short read from signalfd: %d bytes", n)
	}
	si := (*unix.SignalfdSiginfo)(unsafe.Pointer(&buf[0]))
	return Info{Signo: unix.Signal(si.Signo), PID: si.Pid}, nil
}
