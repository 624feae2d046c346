package child

import (
	"reflect"
	"testing"

	"github.com/kornnellio/svcsuper/internal/uidgid"
)

func TestBuildTrampolineArgsRoundTrips(t *testing.T) {
	cfg := Config{
		ProgName: "/usr/bin/myd",
		Argv:     []string{"/usr/bin/myd", "--flag", "value"},
		Chroot:   "/srv/jail",
		Chdir:    "/",
		UID:      1000,
		GID:      uidgid.None,
	}
	args := BuildTrampolineArgs("/usr/bin/svcsuper", cfg)

	want := []string{"/usr/bin/svcsuper", ExecStepFlag, "/srv/jail", "/", "1000", "-1",
		"--", "/usr/bin/myd", "/usr/bin/myd", "--flag", "value"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("BuildTrampolineArgs = %v, want %v", args, want)
	}
}

func TestRunExecStepRejectsMalformedArgs(t *testing.T) {
	if err := RunExecStep([]string{"", ""}); err == nil {
		t.Fatal("expected error for too-few arguments")
	}
	if err := RunExecStep([]string{"", "", "1000", "-1", "nope", "/bin/true"}); err == nil {
		t.Fatal("expected error for missing '--' separator")
	}
	if err := RunExecStep([]string{"", "", "notanumber", "-1", "--", "/bin/true"}); err == nil {
		t.Fatal("expected error for non-numeric uid")
	}
}
