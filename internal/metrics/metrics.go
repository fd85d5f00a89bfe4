// Package metrics tracks request counters for a running server.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// ServeMetrics counts requests served since StartTime. Safe for
// concurrent use.
type ServeMetrics struct {
	StartTime time.Time

	requests    atomic.Int64
	notFound    atomic.Int64
	forbidden   atomic.Int64
	serverError atomic.Int64
	bytes       atomic.Int64
}

// NewServeMetrics creates a new metrics instance.
func NewServeMetrics() *ServeMetrics {
	return &ServeMetrics{
		StartTime: time.Now(),
	}
}

// Record counts one completed response.
func (m *ServeMetrics) Record(status int, bytes int64) {
	m.requests.Add(1)
	m.bytes.Add(bytes)
	switch {
	case status == http.StatusNotFound:
		m.notFound.Add(1)
	case status == http.StatusForbidden:
		m.forbidden.Add(1)
	case status >= 500:
		m.serverError.Add(1)
	}
}

func (m *ServeMetrics) Requests() int64 { return m.requests.Load() }
func (m *ServeMetrics) NotFound() int64 { return m.notFound.Load() }
func (m *ServeMetrics) Forbidden() int64 { return m.forbidden.Load() }
func (m *ServeMetrics) ServerErrors() int64 { return m.serverError.Load() }
func (m *ServeMetrics) BytesSent() int64 { return m.bytes.Load() }

// Uptime returns the time since the metrics were created.
func (m *ServeMetrics) Uptime() time.Duration {
	return time.Since(m.StartTime)
}

// String returns a single-line summary.
func (m *ServeMetrics) String() string {
	return fmt.Sprintf("📊 Served %d requests (%s) in %v (%d not found, %d forbidden, %d errors)",
		m.Requests(),
		humanize.Bytes(uint64(m.BytesSent())),
		m.Uptime().Round(time.Second),
		m.NotFound(),
		m.Forbidden(),
		m.ServerErrors(),
	)
}

// Print outputs the metrics to stdout.
func (m *ServeMetrics) Print() {
	fmt.Println(m.String())
}
