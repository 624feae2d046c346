// Package uidgid resolves configured user/group names or numeric IDs to
// numeric uid/gid, the way the original childproc.c does it: by name
// first, and only falling back to a numeric value when the string is
// made up entirely of digits. A bare numeric string that happens to
// collide with a real username is still resolved by name first, and a
// non-numeric string that fails name lookup resolves to None rather than
// silently becoming uid 0 — the original's header comment calls this out
// by name as the guard against a config typo like "0day" landing a
// service on uid 0.
package uidgid

import (
	"os/user"
	"strconv"
)

// None is returned when a configured name/id could not be resolved to
// anything. The child controller treats it as "leave credentials alone".
const None = -1

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveUID resolves name to a uid: by username first, then as a literal
// numeric uid if name is all digits, else None.
func ResolveUID(name string) int {
	if u, err := user.Lookup(name); err == nil {
		if id, err := strconv.Atoi(u.Uid); err == nil {
			return id
		}
	}
	if allDigits(name) {
		if id, err := strconv.Atoi(name); err == nil {
			return id
		}
	}
	return None
}

// ResolveGID resolves name to a gid: by group name first, then as a
// literal numeric gid if name is all digits, else None.
func ResolveGID(name string) int {
	if g, err := user.LookupGroup(name); err == nil {
		if id, err := strconv.Atoi(g.Gid); err == nil {
			return id
		}
	}
	if allDigits(name) {
		if id, err := strconv.Atoi(name); err == nil {
			return id
		}
	}
	return None
}
