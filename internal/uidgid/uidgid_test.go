package uidgid

import (
	"os/user"
	"strconv"
	"testing"
)

func TestAllDigits(t *testing.T) {
	cases := map[string]bool{
		"0":      true,
		"1234":   true,
		"":       false,
		"0day":   false,
		"-1":     false,
		" 12":    false,
		"12 ":    false,
		"abc123": false,
	}
	for in, want := range cases {
		if got := allDigits(in); got != want {
			t.Errorf("allDigits(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestResolveUIDNumericFallback(t *testing.T) {
	if got := ResolveUID("0day"); got != None {
		t.Errorf(`ResolveUID("0day") = %d, want None (must not resolve to uid 0)`, got)
	}
	if got := ResolveUID("nonexistent-user-name-xyz"); got != None {
		t.Errorf("ResolveUID of unknown non-numeric name = %d, want None", got)
	}
}

func TestResolveUIDSelf(t *testing.T) {
	me, err := user.Current()
	if err != nil {
		t.Skip("no current user info available in this environment")
	}
	want, err := strconv.Atoi(me.Uid)
	if err != nil {
		t.Skip("current uid not numeric")
	}
	if got := ResolveUID(me.Username); got != want {
		t.Errorf("ResolveUID(%q) = %d, want %d", me.Username, got, want)
	}
	if got := ResolveUID(me.Uid); got != want {
		t.Errorf("ResolveUID(%q) = %d, want %d", me.Uid, got, want)
	}
}

func TestResolveGIDUnknown(t *testing.T) {
	if got := ResolveGID("no-such-group-xyz"); got != None {
		t.Errorf("ResolveGID of unknown group = %d, want None", got)
	}
}
