package metrics

import (
	"math"
	rtmetrics "runtime/metrics"
	"sync"
	"time"

	"clipfilter/internal/logging"
)

// StatsProvider reports pipeline state the collector cannot observe through
// the observer hooks.
type StatsProvider interface {
	GetStats() Stats
}

type Stats struct {
	EngineReady  bool
	LivePreviews int
}

// StatsFunc adapts a function to StatsProvider.
type StatsFunc func() Stats

func (f StatsFunc) GetStats() Stats { return f() }

// runtime/metrics sample names read on every tick.
const (
	sampleHeapObjects = "/memory/classes/heap/objects:bytes"
	sampleTotalMemory = "/memory/classes/total:bytes"
	sampleGCCycles    = "/gc/cycles/total:gc-cycles"
	sampleMemLimit    = "/gc/gomemlimit:bytes"
)

// Collector refreshes runtime and engine gauges on an interval.
type Collector struct {
	provider StatsProvider
	interval time.Duration
	samples  []rtmetrics.Sample
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a collector. provider may be nil, in which case only
// runtime memory statistics are collected.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	names := []string{sampleHeapObjects, sampleTotalMemory, sampleGCCycles, sampleMemLimit}
	samples := make([]rtmetrics.Sample, len(names))
	for i, name := range names {
		samples[i].Name = name
	}
	return &Collector{
		provider: provider,
		interval: interval,
		samples:  samples,
		stopChan: make(chan struct{}),
	}
}

// Start collects once immediately, then on every tick until Stop.
func (c *Collector) Start() {
	go func() {
		c.collect()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Stop is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collect() {
	rtmetrics.Read(c.samples)

	var heap uint64
	for _, s := range c.samples {
		if s.Value.Kind() != rtmetrics.KindUint64 {
			continue
		}
		v := s.Value.Uint64()
		switch s.Name {
		case sampleHeapObjects:
			heap = v
			GoMemAllocBytes.Set(float64(v))
		case sampleTotalMemory:
			GoMemSysBytes.Set(float64(v))
		case sampleGCCycles:
			GoGCRuns.Set(float64(v))
		case sampleMemLimit:
			if v < math.MaxInt64 {
				GoMemLimit.Set(float64(v))
			}
		}
	}

	if c.provider == nil {
		return
	}
	stats := c.provider.GetStats()
	EngineReady.Set(boolGauge(stats.EngineReady))

	logging.Debug("Metrics collected: engine_ready=%v previews=%d heap=%d", stats.EngineReady, stats.LivePreviews, heap)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
