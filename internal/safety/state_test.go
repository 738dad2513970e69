package safety

import "testing"

func TestMachine_ConnectLifecycle(t *testing.T) {
	m := NewMachine()
	if m.Status() != StatusDisconnected {
		t.Fatalf("expected initial state disconnected, got %s", m.Status())
	}
	if err := m.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if m.Status() != StatusConnected {
		t.Fatalf("expected connected, got %s", m.Status())
	}
	if err := m.Connect(); err == nil {
		t.Error("expected error connecting twice")
	}
	m.Disconnect()
	if m.Status() != StatusDisconnected {
		t.Errorf("expected disconnected, got %s", m.Status())
	}
}

func TestMachine_EmergencyStopLatch(t *testing.T) {
	m := NewMachine()
	if err := m.EmergencyStop(); err == nil {
		t.Error("expected error emergency-stopping while disconnected")
	}
	if err := m.ClearEmergencyStop(); err == nil {
		t.Error("expected error clearing with no latch")
	}

	_ = m.Connect()
	if err := m.EmergencyStop(); err != nil {
		t.Fatalf("EmergencyStop: %v", err)
	}
	if m.Status() != StatusEmergencyStop {
		t.Fatalf("expected emergency_stop, got %s", m.Status())
	}
	// Idempotent while latched.
	if err := m.EmergencyStop(); err != nil {
		t.Errorf("repeat EmergencyStop: %v", err)
	}
	if err := m.ClearEmergencyStop(); err != nil {
		t.Fatalf("ClearEmergencyStop: %v", err)
	}
	if m.Status() != StatusConnected {
		t.Errorf("expected connected after clear, got %s", m.Status())
	}
}

func TestMachine_ErrorRecoversOnlyViaDisconnect(t *testing.T) {
	m := NewMachine()
	_ = m.Connect()
	m.Fault()
	if m.Status() != StatusError {
		t.Fatalf("expected error state, got %s", m.Status())
	}
	if err := m.Connect(); err == nil {
		t.Error("expected error connecting from ERROR state")
	}
	if err := m.EmergencyStop(); err == nil {
		t.Error("expected error emergency-stopping from ERROR state")
	}
	m.Disconnect()
	if m.Status() != StatusDisconnected {
		t.Errorf("expected disconnected after recovery, got %s", m.Status())
	}
	if err := m.Connect(); err != nil {
		t.Errorf("reconnect after recovery: %v", err)
	}
}
