// Command supervise forks one child process, restarts it under a
// configurable respawn policy, and answers kill/restart/status IPC
// requests on an optional manager descriptor. Its flags mirror
// svc-supervise's getopt table (supervise.c) with two additions:
// --kill-delay (hardcoded to 3s in the original) and --config (an
// optional TOML file, see internal/config).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kornnellio/svcsuper/internal/child"
	"github.com/kornnellio/svcsuper/internal/config"
	"github.com/kornnellio/svcsuper/internal/logging"
	"github.com/kornnellio/svcsuper/internal/sigfd"
	"github.com/kornnellio/svcsuper/internal/supervisor"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: supervise [options] -- program [arguments]\n\nOptions:\n\n")
	flag.PrintDefaults()
	os.Exit(0)
}

func main() {
	// Re-exec trampoline: see internal/child.ExecStepFlag for why this
	// has to be the very first thing main does.
	if len(os.Args) > 1 && os.Args[1] == child.ExecStepFlag {
		if err := child.RunExecStep(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "supervise: %v\n", err)
			os.Exit(1)
		}
		return
	}

	chroot := flag.String("chroot", "", "change root directory to PATH before exec")
	chdir := flag.String("chdir", "", "change directory to PATH before exec")
	stdout := flag.String("stdout", "", "redirect program stdout to PATH")
	stderr := flag.String("stderr", "", "redirect program stderr to PATH")
	uid := flag.String("uid", "", "run the program as this user")
	gid := flag.String("gid", "", "run the program as this group")
	umask := flag.String("umask", "", "set supervisor umask (octal, default 022)")
	respawnDelay := flag.Duration("respawn-delay", 0, "wait this long before respawning")
	respawnMax := flag.Int("respawn-max", 0, "give up after this many respawns, on the next crash (0 = unlimited)")
	respawnPeriod := flag.Duration("respawn-period", 0, "reset the crash counter once the child has run this long")
	killDelay := flag.Duration("kill-delay", 0, "grace period between SIGTERM and SIGKILL (default 3s)")
	managerFD := flag.Int("manager-fd", -1, "perform manager IPC on this already-open descriptor number")
	configPath := flag.String("config", "", "optional TOML config file")
	help := flag.Bool("help", false, "this message")
	flag.Parse()

	if *help {
		usage()
	}

	argv := flag.Args()
	if len(argv) == 0 {
		usage()
	}

	opts := config.Options{
		ConfigPath:    *configPath,
		Chroot:        *chroot,
		Chdir:         *chdir,
		Stdout:        *stdout,
		Stderr:        *stderr,
		UID:           *uid,
		GID:           *gid,
		Umask:         *umask,
		RespawnDelay:  *respawnDelay,
		RespawnMax:    *respawnMax,
		RespawnPeriod: *respawnPeriod,
		KillDelay:     *killDelay,
		ManagerFD:     *managerFD,
	}

	cfg, settings, err := config.Assemble(opts, argv[0], argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "supervise: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.ProgName)
	entry := log.WithField("prog", cfg.ProgName)

	gate, err := supervisor.Prepare(settings.Umask)
	if err != nil {
		entry.WithError(err).Fatal("failed to prepare signal gate")
	}
	defer gate.Close()

	var managerConn *os.File
	if settings.ManagerFD >= 0 {
		managerConn = os.NewFile(uintptr(settings.ManagerFD), "manager")
	}

	rec := child.NewRecord(cfg, entry)
	ctrl := child.NewController(rec, entry)
	sup := supervisor.New(ctrl, gate, managerConn, entry)

	if err := sup.Run(); err != nil {
		entry.WithError(err).Fatal("supervisor loop exited with an error")
	}
}

