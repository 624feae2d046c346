package child

import (
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestController(cfg Config) *Controller {
	log := logrus.NewEntry(logrus.New())
	return NewController(NewRecord(cfg, log), log)
}

func TestReapIgnoresForeignPID(t *testing.T) {
	c := newTestController(Config{})
	c.rec.PID = 100
	reaped, giveUp := c.Reap(200, syscall.WaitStatus(0))
	if reaped || giveUp {
		t.Fatalf("Reap of unrelated pid should be a no-op, got reaped=%v giveUp=%v", reaped, giveUp)
	}
}

func TestReapStoppingGoesDown(t *testing.T) {
	c := newTestController(Config{})
	c.rec.PID = 42
	c.rec.St = StateStopping
	reaped, giveUp := c.Reap(42, syscall.WaitStatus(0))
	if !reaped || giveUp {
		t.Fatalf("reaped=%v giveUp=%v, want true/false", reaped, giveUp)
	}
	if c.rec.St != StateDown {
		t.Errorf("state = %v, want StateDown", c.rec.St)
	}
	if c.rec.PID != 0 {
		t.Errorf("pid = %d, want 0 after reap", c.rec.PID)
	}
}

func TestReapCrashRespawnsUntilCap(t *testing.T) {
	c := newTestController(Config{RespawnMax: 2})
	c.rec.PID = 7
	c.rec.St = StateUp
	c.rec.RespawnLast = time.Now()

	_, giveUp := c.Reap(7, syscall.WaitStatus(0))
	if giveUp {
		t.Fatalf("first crash should not give up")
	}
	if c.rec.RestartCount != 1 {
		t.Errorf("RestartCount = %d, want 1", c.rec.RestartCount)
	}

	c.rec.PID = 7
	c.rec.St = StateUp
	_, giveUp = c.Reap(7, syscall.WaitStatus(0))
	if giveUp {
		t.Fatalf("second crash (count==max) should not give up yet")
	}

	c.rec.PID = 7
	c.rec.St = StateUp
	_, giveUp = c.Reap(7, syscall.WaitStatus(0))
	if !giveUp {
		t.Fatalf("third crash should exceed RespawnMax and give up")
	}
	if c.rec.St != StateDown {
		t.Errorf("state = %v, want StateDown after giving up", c.rec.St)
	}
}

func TestReapResetsCountAfterRespawnPeriod(t *testing.T) {
	c := newTestController(Config{RespawnMax: 1, RespawnPeriod: 10 * time.Millisecond})
	c.rec.PID = 7
	c.rec.St = StateUp
	c.rec.RestartCount = 1
	c.rec.RespawnLast = time.Now().Add(-time.Hour)

	_, giveUp := c.Reap(7, syscall.WaitStatus(0))
	if giveUp {
		t.Fatalf("stable-long-enough crash should reset the counter, not give up")
	}
	if c.rec.RestartCount != 0 {
		t.Errorf("RestartCount = %d, want 0 (incremented then reset for having been stable)", c.rec.RestartCount)
	}
}

func TestReadyOnlyFromStarting(t *testing.T) {
	c := newTestController(Config{})
	c.rec.St = StateReady
	c.Ready()
	if c.rec.St != StateReady {
		t.Errorf("Ready from non-STARTING state changed it to %v", c.rec.St)
	}

	c.rec.St = StateStarting
	c.Ready()
	if c.rec.St != StateUp {
		t.Errorf("Ready from STARTING = %v, want StateUp", c.rec.St)
	}
}
