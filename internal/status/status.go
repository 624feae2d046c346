// Package status provides a /proc-based liveness check, adapted from
// kornnellio-gosv's proc.go (ReadProcInfo/readStatus) down to the two
// things the IPC status reply reports: whether the pid we think is our
// child is actually still present in the process table (Alive), and the
// process name /proc gives for it (Name). This is a cross-check against
// our own bookkeeping, not a replacement for it — the full /proc
// introspection dump (fd table, memory maps) the teacher built is out of
// scope here, since nothing in the IPC status reply exposes that level of
// detail.
package status

import (
	"fmt"
	"os"
	"strings"
)

// Alive reports whether pid names a process currently visible in
// /proc. A pid of 0 (no child currently running) is never alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

// Name reads the Name: field from /proc/[pid]/status, for diagnostics.
func Name(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		return "", fmt.Errorf("status: read /proc/%d/status: %w", pid, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "Name:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Name:")), nil
		}
	}
	return "", fmt.Errorf("status: no Name field in /proc/%d/status", pid)
}
