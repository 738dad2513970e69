package telemetry

import "time"

// HistoryEntry is one recorded (timestamp, value) pair.
type HistoryEntry struct {
	Timestamp time.Time `json:"ts"`
	Value     float64   `json:"value"`
}

// historyRing is a fixed-capacity ring of history entries with FIFO
// eviction. Appends are O(1); reads copy out in chronological order.
type historyRing struct {
	buf   []HistoryEntry
	head  int
	count int
}

func newHistoryRing(capacity int) *historyRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &historyRing{buf: make([]HistoryEntry, capacity)}
}

func (r *historyRing) append(e HistoryEntry) {
	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = e
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// last returns up to n most recent entries, oldest first.
func (r *historyRing) last(n int) []HistoryEntry {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]HistoryEntry, n)
	start := r.head + r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

func (r *historyRing) reset() {
	r.head = 0
	r.count = 0
}
