// Package metrics provides lightweight counters for tracking runtime
// statistics of an RCON session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a client session.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	connects      atomic.Int64
	commandsSent  atomic.Int64
	repliesOK     atomic.Int64
	repliesFailed atomic.Int64
	timeouts      atomic.Int64
	bytesIn       atomic.Int64
	bytesOut      atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ConnectionOpened records a successful connect (or reconnect).
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connects.Add(1)
}

// CommandSent records one command line going out.
func (c *Collector) CommandSent() {
	if c == nil {
		return
	}
	c.commandsSent.Add(1)
}

// ReplyReceived records a decoded reply; ok mirrors the reply's own
// success flag.
func (c *Collector) ReplyReceived(ok bool) {
	if c == nil {
		return
	}
	if ok {
		c.repliesOK.Add(1)
	} else {
		c.repliesFailed.Add(1)
	}
}

// TimeoutHit records an elapsed command deadline.
func (c *Collector) TimeoutHit() {
	if c == nil {
		return
	}
	c.timeouts.Add(1)
}

// AddBytesIn adds to the received-byte counter.
func (c *Collector) AddBytesIn(n int) {
	if c == nil {
		return
	}
	c.bytesIn.Add(int64(n))
}

// AddBytesOut adds to the sent-byte counter.
func (c *Collector) AddBytesOut(n int) {
	if c == nil {
		return
	}
	c.bytesOut.Add(int64(n))
}

// NoteError records the most recent failure for the snapshot.
func (c *Collector) NoteError(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Uptime        string `json:"uptime"`
	Connects      int64  `json:"connects"`
	CommandsSent  int64  `json:"commands_sent"`
	RepliesOK     int64  `json:"replies_ok"`
	RepliesFailed int64  `json:"replies_failed"`
	Timeouts      int64  `json:"timeouts"`
	BytesIn       int64  `json:"bytes_in"`
	BytesOut      int64  `json:"bytes_out"`
	LastError     string `json:"last_error,omitempty"`
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	uptime := time.Since(c.startTime).Round(time.Second)
	lastErr := c.lastErrorMsg
	c.mu.RUnlock()

	return Snapshot{
		Uptime:        uptime.String(),
		Connects:      c.connects.Load(),
		CommandsSent:  c.commandsSent.Load(),
		RepliesOK:     c.repliesOK.Load(),
		RepliesFailed: c.repliesFailed.Load(),
		Timeouts:      c.timeouts.Load(),
		BytesIn:       c.bytesIn.Load(),
		BytesOut:      c.bytesOut.Load(),
		LastError:     lastErr,
	}
}

// String renders the snapshot as single-line JSON.
func (s Snapshot) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}
