// Safety gate validating outbound tractor commands.
package safety

import (
	"fmt"
	"sync"
	"time"
)

// Well-known command names with special gate handling.
const (
	CmdEmergencyStop = "emergency_stop"
)

// Reason classifies why the gate rejected a command.
type Reason string

const (
	ReasonNotConnected    Reason = "NOT_CONNECTED"
	ReasonEmergencyActive Reason = "EMERGENCY_ACTIVE"
	ReasonUnsafeMode      Reason = "UNSAFE_MODE"
	ReasonOutOfRange      Reason = "OUT_OF_RANGE"
	ReasonRateLimited     Reason = "RATE_LIMITED"
)

// Rejection is a typed gate refusal. Rejections are expected control flow,
// returned as values and never panicked.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("command rejected (%s): %s", r.Reason, r.Message)
}

// Command is one outbound instruction; Value is nil for bare commands.
type Command struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value,omitempty"`
}

// RangeFunc resolves the physical bounds for a channel name.
type RangeFunc func(channel string) (min, max float64, ok bool)

// DefaultAllowList is the safe-mode command allow-list.
var DefaultAllowList = []string{
	"get_status", "get_data", "set_lights", "horn", "start_engine", "stop_engine",
}

// commandChannels maps value-carrying commands to the channel whose bounds
// validate them.
var commandChannels = map[string]string{
	"set_engine_rpm":         "engine_rpm",
	"set_pto_speed":          "pto_speed",
	"set_hydraulic_pressure": "hydraulic_pressure",
}

// DefaultMaxRate is the accepted-command rate limit in commands per second.
const DefaultMaxRate = 10

// Gate validates commands against the emergency latch, safe mode, value
// ranges, and a rate limit. Checks run in order and short-circuit on the
// first failure. The gate never blocks; a rate-limited caller decides
// whether to retry.
type Gate struct {
	mu          sync.Mutex
	safeMode    bool
	allowList   map[string]struct{}
	minInterval time.Duration
	lastAccept  time.Time
	ranges      RangeFunc
	now         func() time.Time
}

// GateOptions configure a Gate.
type GateOptions struct {
	SafeMode  bool
	MaxRate   float64  // commands per second, DefaultMaxRate if zero
	AllowList []string // DefaultAllowList if nil
	Ranges    RangeFunc
	Now       func() time.Time // injectable clock for tests
}

// NewGate builds a gate from options.
func NewGate(opts GateOptions) *Gate {
	rate := opts.MaxRate
	if rate <= 0 {
		rate = DefaultMaxRate
	}
	list := opts.AllowList
	if list == nil {
		list = DefaultAllowList
	}
	allow := make(map[string]struct{}, len(list))
	for _, name := range list {
		allow[name] = struct{}{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Gate{
		safeMode:    opts.SafeMode,
		allowList:   allow,
		minInterval: time.Duration(float64(time.Second) / rate),
		ranges:      opts.Ranges,
		now:         now,
	}
}

// SetSafeMode toggles the safe-mode allow-list restriction.
func (g *Gate) SetSafeMode(on bool) {
	g.mu.Lock()
	g.safeMode = on
	g.mu.Unlock()
}

// SafeMode reports whether safe mode is active.
func (g *Gate) SafeMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.safeMode
}

// Check validates cmd against the current connection state. A nil return
// means the command is accepted; only accepted commands consume the rate
// limiter's interval.
func (g *Gate) Check(cmd Command, status Status) *Rejection {
	// Emergency stop bypasses everything except being connected at all.
	if cmd.Name == CmdEmergencyStop {
		if status != StatusConnected && status != StatusEmergencyStop {
			return &Rejection{Reason: ReasonNotConnected, Message: "no machine link for emergency stop"}
		}
		return nil
	}

	if status == StatusEmergencyStop {
		return &Rejection{Reason: ReasonEmergencyActive, Message: "emergency stop active"}
	}
	if status != StatusConnected {
		return &Rejection{Reason: ReasonNotConnected, Message: fmt.Sprintf("link is %s", status)}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.safeMode {
		if _, ok := g.allowList[cmd.Name]; !ok {
			return &Rejection{Reason: ReasonUnsafeMode, Message: fmt.Sprintf("%s not allowed in safe mode", cmd.Name)}
		}
	}

	if channel, ok := commandChannels[cmd.Name]; ok && cmd.Value != nil && g.ranges != nil {
		if min, max, ok := g.ranges(channel); ok {
			if *cmd.Value < min || *cmd.Value > max {
				return &Rejection{
					Reason:  ReasonOutOfRange,
					Message: fmt.Sprintf("%s value %.1f outside [%.1f, %.1f]", cmd.Name, *cmd.Value, min, max),
				}
			}
		}
	}

	now := g.now()
	if !g.lastAccept.IsZero() {
		if wait := g.minInterval - now.Sub(g.lastAccept); wait > 0 {
			return &Rejection{Reason: ReasonRateLimited, Message: fmt.Sprintf("rate limited, retry in %s", wait.Round(time.Millisecond))}
		}
	}
	g.lastAccept = now
	return nil
}
