package safety

import (
	"testing"
	"time"
)

func testRanges(channel string) (float64, float64, bool) {
	switch channel {
	case "engine_rpm":
		return 800, 2400, true
	case "pto_speed":
		return 0, 1000, true
	}
	return 0, 0, false
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(safeMode bool, clock *fakeClock) *Gate {
	return NewGate(GateOptions{
		SafeMode: safeMode,
		MaxRate:  10,
		Ranges:   testRanges,
		Now:      clock.now,
	})
}

func TestGate_NotConnected(t *testing.T) {
	g := newTestGate(false, &fakeClock{t: time.Now()})

	rej := g.Check(Command{Name: "horn"}, StatusDisconnected)
	if rej == nil || rej.Reason != ReasonNotConnected {
		t.Fatalf("expected NOT_CONNECTED, got %+v", rej)
	}
	rej = g.Check(Command{Name: "horn"}, StatusError)
	if rej == nil || rej.Reason != ReasonNotConnected {
		t.Fatalf("expected NOT_CONNECTED in ERROR state, got %+v", rej)
	}

	// Emergency stop needs a machine link too.
	rej = g.Check(Command{Name: CmdEmergencyStop}, StatusDisconnected)
	if rej == nil || rej.Reason != ReasonNotConnected {
		t.Fatalf("expected NOT_CONNECTED for e-stop while disconnected, got %+v", rej)
	}
}

func TestGate_EmergencyLatchBlocksEverythingButStop(t *testing.T) {
	g := newTestGate(false, &fakeClock{t: time.Now()})

	if rej := g.Check(Command{Name: CmdEmergencyStop}, StatusConnected); rej != nil {
		t.Fatalf("e-stop while connected rejected: %+v", rej)
	}
	if rej := g.Check(Command{Name: CmdEmergencyStop}, StatusEmergencyStop); rej != nil {
		t.Fatalf("repeat e-stop while latched rejected: %+v", rej)
	}

	for _, name := range []string{"horn", "start_engine", "set_engine_rpm"} {
		rej := g.Check(Command{Name: name}, StatusEmergencyStop)
		if rej == nil || rej.Reason != ReasonEmergencyActive {
			t.Errorf("%s: expected EMERGENCY_ACTIVE, got %+v", name, rej)
		}
	}
}

func TestGate_SafeModeAllowList(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	g := newTestGate(true, clock)

	v := 2000.0
	rej := g.Check(Command{Name: "set_engine_rpm", Value: &v}, StatusConnected)
	if rej == nil || rej.Reason != ReasonUnsafeMode {
		t.Fatalf("expected UNSAFE_MODE, got %+v", rej)
	}

	if rej := g.Check(Command{Name: "start_engine"}, StatusConnected); rej != nil {
		t.Fatalf("allow-listed command rejected: %+v", rej)
	}

	// With safe mode off the same command passes range validation.
	g.SetSafeMode(false)
	clock.advance(time.Second)
	if rej := g.Check(Command{Name: "set_engine_rpm", Value: &v}, StatusConnected); rej != nil {
		t.Fatalf("expected accept with safe mode off, got %+v", rej)
	}
}

func TestGate_OutOfRange(t *testing.T) {
	g := newTestGate(false, &fakeClock{t: time.Now()})

	high := 3000.0
	rej := g.Check(Command{Name: "set_engine_rpm", Value: &high}, StatusConnected)
	if rej == nil || rej.Reason != ReasonOutOfRange {
		t.Fatalf("expected OUT_OF_RANGE, got %+v", rej)
	}

	low := 500.0
	rej = g.Check(Command{Name: "set_engine_rpm", Value: &low}, StatusConnected)
	if rej == nil || rej.Reason != ReasonOutOfRange {
		t.Fatalf("expected OUT_OF_RANGE below min, got %+v", rej)
	}
}

func TestGate_RateLimiting(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	g := newTestGate(true, clock)

	if rej := g.Check(Command{Name: "horn"}, StatusConnected); rej != nil {
		t.Fatalf("first command rejected: %+v", rej)
	}

	clock.advance(50 * time.Millisecond)
	rej := g.Check(Command{Name: "horn"}, StatusConnected)
	if rej == nil || rej.Reason != ReasonRateLimited {
		t.Fatalf("expected RATE_LIMITED at 50ms, got %+v", rej)
	}

	// A rejected command must not consume the interval.
	clock.advance(60 * time.Millisecond)
	if rej := g.Check(Command{Name: "horn"}, StatusConnected); rej != nil {
		t.Fatalf("expected accept after 110ms, got %+v", rej)
	}
}

func TestGate_RejectionIsError(t *testing.T) {
	rej := &Rejection{Reason: ReasonRateLimited, Message: "retry in 50ms"}
	var err error = rej
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}
