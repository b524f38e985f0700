package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"clipfilter/internal/logging"
	"clipfilter/internal/metrics"
)

// Config tunes upload backpressure. Water marks are shares of the limit.
type Config struct {
	// MemoryLimitBytes overrides the runtime memory limit. 0 uses GOMEMLIMIT.
	MemoryLimitBytes int64
	// HighWaterMark is the usage below which uploads resume.
	HighWaterMark float64
	// CriticalWaterMark is the usage at which uploads are refused.
	CriticalWaterMark float64
	CheckInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Usage is the last heap sample.
type Usage struct {
	Heap  int64
	Limit int64
	Ratio float64
}

// Monitor samples heap usage and tells the upload path when to refuse new
// clips. Without a limit it never pauses.
type Monitor struct {
	config   Config
	limit    int64
	readMem  func() uint64
	stopChan chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	usage  Usage
	paused bool
}

func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes
	if limit == 0 {
		if rt := debug.SetMemoryLimit(-1); rt > 0 && rt < math.MaxInt64 {
			limit = rt
			logging.Info("Memory monitor using GOMEMLIMIT: %s", formatBytes(limit))
		} else {
			logging.Debug("Memory monitor: no memory limit, upload backpressure disabled")
		}
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		readMem:  heapAlloc,
		stopChan: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start samples on CheckInterval until Stop. It does nothing without a limit.
func (m *Monitor) Start() {
	if m.limit <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.checkMemory()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) checkMemory() {
	alloc := m.readMem()
	heap := int64(min(alloc, uint64(math.MaxInt64)))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.usage = Usage{Heap: heap, Limit: m.limit}
	if m.limit <= 0 {
		return
	}
	m.usage.Ratio = float64(heap) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(m.usage.Ratio)

	next := m.nextPaused(m.usage.Ratio)
	if next == m.paused {
		return
	}
	m.paused = next
	if next {
		logging.Warn("Memory critical (%.1f%% of limit), refusing new uploads", m.usage.Ratio*100)
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
		return
	}
	logging.Info("Memory recovered (%.1f%% of limit), accepting uploads", m.usage.Ratio*100)
	metrics.MemoryPaused.Set(0)
}

// nextPaused applies hysteresis between the two water marks.
func (m *Monitor) nextPaused(ratio float64) bool {
	if m.paused {
		return ratio >= m.config.HighWaterMark
	}
	return ratio >= m.config.CriticalWaterMark
}

// IsPaused reports whether uploads should be refused. A nil Monitor never
// pauses.
func (m *Monitor) IsPaused() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Usage returns the last sample.
func (m *Monitor) Usage() Usage {
	if m == nil {
		return Usage{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage
}
