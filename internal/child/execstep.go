package child

import (
	"fmt"
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/kornnellio/svcsuper/internal/logging"
	"github.com/kornnellio/svcsuper/internal/sigfd"
	"github.com/kornnellio/svcsuper/internal/uidgid"
)

// ExecStepFlag marks a re-exec of the supervisor binary as the
// between-fork-and-exec trampoline rather than a normal supervisor run.
// Go gives no hook to run code after fork() and before execve() inside an
// already-running multi-threaded process (that's exactly what the
// runtime's own forkAndExecInChild does, carefully, in asm); the
// trampoline sidesteps this by having os/exec fork+exec a *fresh* process
// image of ourselves first, which is unproblematic because nothing has
// forked the live Go runtime in place. That fresh, still single-purpose
// process then does the original's childproc_exec steps and finally
// syscall.Exec()s the real target, which replaces this process image in
// place and inherits whatever signal mask/credentials/cwd it set up.
const ExecStepFlag = "__svcsuper_execstep"

// BuildTrampolineArgs encodes the between-fork-and-exec setup a Record
// needs as argv for a re-exec of the supervisor binary itself. See
// RunExecStep for the corresponding decode.
func BuildTrampolineArgs(self string, cfg Config) []string {
	args := []string{self, ExecStepFlag, cfg.Chroot, cfg.Chdir,
		strconv.Itoa(cfg.UID), strconv.Itoa(cfg.GID), "--", cfg.ProgName}
	return append(args, cfg.Argv...)
}

// RunExecStep performs childproc_exec's steps in order — unblock signals,
// setsid, chroot, chdir, drop gid then uid, exec — and only returns on
// error (exec replaces the process image on success). args is
// os.Args[2:] of a process started with ExecStepFlag as os.Args[1].
func RunExecStep(args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("execstep: malformed arguments")
	}
	chroot, chdir, uidStr, gidStr := args[0], args[1], args[2], args[3]
	if args[4] != "--" {
		return fmt.Errorf("execstep: malformed arguments: missing separator")
	}
	rest := args[5:]
	if len(rest) == 0 {
		return fmt.Errorf("execstep: no program to exec")
	}
	prog, progArgv := rest[0], rest

	uid, err := strconv.Atoi(uidStr)
	if err != nil {
		return fmt.Errorf("execstep: bad uid %q: %w", uidStr, err)
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return fmt.Errorf("execstep: bad gid %q: %w", gidStr, err)
	}

	// A fresh re-exec'd process, so building our own logger here is
	// cheap; this is the only way childproc_exec's syslog call sites get
	// reached, since nothing in the parent observes these failures
	// directly (the parent only sees the child exit non-zero).
	log := logging.New(prog).WithField("prog", prog)

	if err := sigfd.Unblock(); err != nil {
		return fmt.Errorf("execstep: unblock signals: %w", err)
	}
	if _, err := unix.Setsid(); err != nil {
		// Already a session leader (e.g. re-run manually) is not fatal.
		if err != unix.EPERM {
			return fmt.Errorf("execstep: setsid: %w", err)
		}
	}
	if chroot != "" {
		if err := unix.Chroot(chroot); err != nil {
			log.Info(fmt.Sprintf("failed to chroot to '%s': %s", chroot, err))
			return fmt.Errorf("execstep: chroot %q: %w", chroot, err)
		}
	}
	if chdir != "" {
		if err := unix.Chdir(chdir); err != nil {
			log.Info(fmt.Sprintf("failed to chdir to '%s': %s", chdir, err))
			return fmt.Errorf("execstep: chdir %q: %w", chdir, err)
		}
	}
	if gid != uidgid.None {
		if err := unix.Setgid(gid); err != nil {
			log.Info(fmt.Sprintf("failed to setgid to %d: %s", gid, err))
			return fmt.Errorf("execstep: setgid %d: %w", gid, err)
		}
	}
	if uid != uidgid.None {
		if err := unix.Setuid(uid); err != nil {
			log.Info(fmt.Sprintf("failed to setuid to %d: %s", uid, err))
			return fmt.Errorf("execstep: setuid %d: %w", uid, err)
		}
	}

	path, err := lookPath(prog)
	if err != nil {
		log.Info(fmt.Sprintf("failed to exec %s: %s", prog, err))
		return fmt.Errorf("execstep: lookup %q: %w", prog, err)
	}
	if err := syscall.Exec(path, progArgv, os.Environ()); err != nil {
		log.Info(fmt.Sprintf("failed to exec %s: %s", prog, err))
		return fmt.Errorf("execstep: exec %q: %w", path, err)
	}
	return nil // unreachable on success
}
