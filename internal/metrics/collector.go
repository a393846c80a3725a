// Package metrics aggregates call timings and token usage for a run.
package metrics

import (
	"math"
	"slices"
	"strings"
	"time"
)

// Operation names recorded by the pipeline.
const (
	OpGenerate = "generate"
	OpRate     = "rate"
	OpHubPage  = "hub_page"
)

// operation holds the raw aggregates for one operation name.
type operation struct {
	count     int64
	failed    int64
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration

	inputTokens  int64
	outputTokens int64
}

// OperationSnapshot holds computed stats for one operation.
type OperationSnapshot struct {
	Name         string
	Count        int64
	Failed       int64
	TotalTimeMs  int64
	AvgTimeMs    float64
	MinTimeMs    int64
	MaxTimeMs    int64
	InputTokens  int64
	OutputTokens int64
}

// Collector aggregates per-operation statistics. The pipeline is sequential,
// so a Collector is not safe for concurrent use.
type Collector struct {
	startTime time.Time
	ops       map[string]*operation
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*operation),
	}
}

func (c *Collector) get(op string) *operation {
	m, ok := c.ops[op]
	if !ok {
		m = &operation{minTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordCall records one call of op. Token counts may be zero when the
// provider does not report usage. A nil Collector ignores the call.
func (c *Collector) RecordCall(op string, duration time.Duration, inputTokens, outputTokens int64, failed bool) {
	if c == nil {
		return
	}
	m := c.get(op)
	m.count++
	if failed {
		m.failed++
	}
	m.totalTime += duration
	m.minTime = min(m.minTime, duration)
	m.maxTime = max(m.maxTime, duration)
	m.inputTokens += inputTokens
	m.outputTokens += outputTokens
}

// Elapsed returns the time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// Snapshot returns the stats of every recorded operation, sorted by name.
func (c *Collector) Snapshot() []OperationSnapshot {
	if c == nil {
		return nil
	}
	snaps := make([]OperationSnapshot, 0, len(c.ops))
	for name, m := range c.ops {
		snaps = append(snaps, OperationSnapshot{
			Name:         name,
			Count:        m.count,
			Failed:       m.failed,
			TotalTimeMs:  m.totalTime.Milliseconds(),
			AvgTimeMs:    float64(m.totalTime.Milliseconds()) / float64(m.count),
			MinTimeMs:    m.minTime.Milliseconds(),
			MaxTimeMs:    m.maxTime.Milliseconds(),
			InputTokens:  m.inputTokens,
			OutputTokens: m.outputTokens,
		})
	}
	slices.SortFunc(snaps, func(a, b OperationSnapshot) int {
		return strings.Compare(a.Name, b.Name)
	})
	return snaps
}
