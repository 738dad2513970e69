// Connection state machine for the tractor link.
package safety

import "fmt"

// Status is the connection state of the machine link.
type Status string

const (
	StatusDisconnected  Status = "disconnected"
	StatusConnected     Status = "connected"
	StatusError         Status = "error"
	StatusEmergencyStop Status = "emergency_stop"
)

// Machine tracks connection state. Transitions are the only way to mutate
// it; the core owns exactly one instance and serializes access.
type Machine struct {
	status Status
}

// NewMachine starts disconnected.
func NewMachine() *Machine {
	return &Machine{status: StatusDisconnected}
}

// Status returns the current state.
func (m *Machine) Status() Status { return m.status }

// Connect transitions DISCONNECTED to CONNECTED.
func (m *Machine) Connect() error {
	if m.status != StatusDisconnected {
		return fmt.Errorf("cannot connect while %s", m.status)
	}
	m.status = StatusConnected
	return nil
}

// Disconnect returns to DISCONNECTED from any state. Disconnecting is the
// recovery path out of ERROR and also drops an emergency-stop latch.
func (m *Machine) Disconnect() {
	m.status = StatusDisconnected
}

// EmergencyStop transitions CONNECTED to EMERGENCY_STOP.
func (m *Machine) EmergencyStop() error {
	if m.status != StatusConnected && m.status != StatusEmergencyStop {
		return fmt.Errorf("cannot emergency-stop while %s", m.status)
	}
	m.status = StatusEmergencyStop
	return nil
}

// ClearEmergencyStop transitions EMERGENCY_STOP back to CONNECTED. Never
// automatic; this is an explicit operator action.
func (m *Machine) ClearEmergencyStop() error {
	if m.status != StatusEmergencyStop {
		return fmt.Errorf("no emergency stop active (state %s)", m.status)
	}
	m.status = StatusConnected
	return nil
}

// Fault moves to ERROR from any state. Only Disconnect leaves ERROR.
func (m *Machine) Fault() {
	m.status = StatusError
}
