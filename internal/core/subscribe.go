// Subscriber registry for data, status, and alert callbacks.
package core

import (
	"context"

	"github.com/google/uuid"

	"tractorops-sim/internal/logging"
	"tractorops-sim/internal/safety"
	"tractorops-sim/internal/telemetry"
)

// DataCallback receives its own snapshot copy once per tick; the callback
// may keep or mutate the map.
type DataCallback func(map[string]telemetry.Parameter)

// StatusCallback receives each connection state transition.
type StatusCallback func(safety.Status)

// AlertCallback receives each new threshold alert.
type AlertCallback func(telemetry.Alert)

// Subscription is the handle returned by Subscribe*; pass it to
// Unsubscribe to deregister.
type Subscription struct {
	id   string
	kind string
}

const (
	subData   = "data"
	subStatus = "status"
	subAlert  = "alert"
)

// SubscribeData registers a data callback. Callbacks run on the tick
// goroutine; subscribers redispatch to their own event loop if they need
// to, and must not call back into the core.
func (c *Core) SubscribeData(cb DataCallback) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New().String()
	c.dataSubs[id] = cb
	return Subscription{id: id, kind: subData}
}

// SubscribeStatus registers a status callback.
func (c *Core) SubscribeStatus(cb StatusCallback) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New().String()
	c.statusSubs[id] = cb
	return Subscription{id: id, kind: subStatus}
}

// SubscribeAlert registers an alert callback.
func (c *Core) SubscribeAlert(cb AlertCallback) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New().String()
	c.alertSubs[id] = cb
	return Subscription{id: id, kind: subAlert}
}

// Unsubscribe removes a previously registered callback.
func (c *Core) Unsubscribe(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch sub.kind {
	case subData:
		delete(c.dataSubs, sub.id)
	case subStatus:
		delete(c.statusSubs, sub.id)
	case subAlert:
		delete(c.alertSubs, sub.id)
	}
}

// invoke runs one callback with panic isolation. A failing subscriber is
// logged and never stops the tick loop or its peers.
func invoke(ctx context.Context, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error("subscriber callback panicked", "kind", kind, "err", r)
		}
	}()
	fn()
}
