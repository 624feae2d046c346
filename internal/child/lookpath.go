package child

import "os/exec"

// lookPath resolves prog against PATH unless it already contains a slash,
// matching execvp(3)'s search behavior (the original uses execvp
// directly).
func lookPath(prog string) (string, error) {
	return exec.LookPath(prog)
}
