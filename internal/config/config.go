// Package config assembles a child.Config and supervisor.Settings from
// CLI flags and an optional on-disk TOML file, flags always winning, per
// SPEC_FULL.md §2. The flag names themselves mirror supervise.c's
// getopt table (--respawn-delay, --respawn-max, --chdir, --chroot,
// --stdout, --stderr, --uid, --gid, --umask, --manager-fd, plus
// --kill-delay and --config which the original does not expose).
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kornnellio/svcsuper/internal/child"
	"github.com/kornnellio/svcsuper/internal/supervisor"
	"github.com/kornnellio/svcsuper/internal/uidgid"
)

// DefaultKillDelay matches supervise.c main()'s hardcoded
// sup.proc.kill_delay = 3.
const DefaultKillDelay = 3 * time.Second

// DefaultUmask matches supervise.c main()'s sup.umask = 022.
const DefaultUmask = "022"

// Options carries the raw CLI flag values, before merging with any file
// config. Zero values mean "not set on the command line".
type Options struct {
	ConfigPath string

	Chroot string
	Chdir  string
	Stdout string
	Stderr string
	UID    string
	GID    string
	Umask  string

	RespawnDelay  time.Duration
	RespawnMax    int
	RespawnPeriod time.Duration
	KillDelay     time.Duration

	ManagerFD int // < 0 means "not set"
}

type fileConfig struct {
	Child struct {
		Chroot        string `toml:"chroot"`
		Chdir         string `toml:"chdir"`
		UID           string `toml:"uid"`
		GID           string `toml:"gid"`
		Stdout        string `toml:"stdout"`
		Stderr        string `toml:"stderr"`
		RespawnDelay  Dur    `toml:"respawn_delay"`
		RespawnMax    int    `toml:"respawn_max"`
		RespawnPeriod Dur    `toml:"respawn_period"`
		KillDelay     Dur    `toml:"kill_delay"`
	} `toml:"child"`
	Supervisor struct {
		Umask     string `toml:"umask"`
		ManagerFD int    `toml:"manager_fd"`
	} `toml:"supervisor"`
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return fc, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseUmask(s string) (int, error) {
	v, err := strconv.ParseInt(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("config: invalid umask %q: %w", s, err)
	}
	return int(v), nil
}

// Assemble merges opts with an optional TOML file at opts.ConfigPath
// into a child.Config and supervisor.Settings. progName/argv come from
// the CLI's trailing "-- program args..." (spec.md §6), not from the
// config file.
func Assemble(opts Options, progName string, argv []string) (child.Config, supervisor.Settings, error) {
	fc, err := loadFile(opts.ConfigPath)
	if err != nil {
		return child.Config{}, supervisor.Settings{}, err
	}

	respawnDelay := opts.RespawnDelay
	if respawnDelay == 0 {
		respawnDelay = fc.Child.RespawnDelay.Duration
	}
	respawnMax := opts.RespawnMax
	if respawnMax == 0 {
		respawnMax = fc.Child.RespawnMax
	}
	respawnPeriod := opts.RespawnPeriod
	if respawnPeriod == 0 {
		respawnPeriod = fc.Child.RespawnPeriod.Duration
	}
	killDelay := opts.KillDelay
	if killDelay == 0 {
		killDelay = fc.Child.KillDelay.Duration
	}
	if killDelay == 0 {
		killDelay = DefaultKillDelay
	}

	umaskStr := firstNonEmpty(opts.Umask, fc.Supervisor.Umask)
	if umaskStr == "" {
		umaskStr = DefaultUmask
	}
	umask, err := parseUmask(umaskStr)
	if err != nil {
		return child.Config{}, supervisor.Settings{}, err
	}

	managerFD := opts.ManagerFD
	if managerFD < 0 {
		managerFD = fc.Supervisor.ManagerFD
	}
	if managerFD == 0 {
		managerFD = -1
	}

	uid := uidgid.None
	if name := firstNonEmpty(opts.UID, fc.Child.UID); name != "" {
		uid = uidgid.ResolveUID(name)
		if uid == uidgid.None {
			return child.Config{}, supervisor.Settings{}, fmt.Errorf("could not resolve user: %s, aborting", name)
		}
	}
	gid := uidgid.None
	if name := firstNonEmpty(opts.GID, fc.Child.GID); name != "" {
		gid = uidgid.ResolveGID(name)
		if gid == uidgid.None {
			return child.Config{}, supervisor.Settings{}, fmt.Errorf("could not resolve group: %s, aborting", name)
		}
	}

	cfg := child.Config{
		ProgName:      progName,
		Argv:          argv,
		Chroot:        firstNonEmpty(opts.Chroot, fc.Child.Chroot),
		Chdir:         firstNonEmpty(opts.Chdir, fc.Child.Chdir),
		UID:           uid,
		GID:           gid,
		StdoutPath:    firstNonEmpty(opts.Stdout, fc.Child.Stdout),
		StderrPath:    firstNonEmpty(opts.Stderr, fc.Child.Stderr),
		RespawnDelay:  respawnDelay,
		RespawnMax:    respawnMax,
		RespawnPeriod: respawnPeriod,
		KillDelay:     killDelay,
	}
	settings := supervisor.Settings{Umask: umask, ManagerFD: managerFD}
	return cfg, settings, nil
}
