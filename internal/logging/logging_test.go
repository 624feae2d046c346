package logging

import "testing"

func TestNewReturnsUsableLogger(t *testing.T) {
	log := New("svcsuper-test")
	if log == nil {
		t.Fatal("New returned nil")
	}
	// Must not panic even when no syslog daemon is reachable.
	log.Info("test message")
}
