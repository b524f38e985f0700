package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipfilter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_jobs_total",
			Help: "Total number of conversion requests by outcome",
		},
		[]string{"outcome"}, // "success", "error", "invalid"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipfilter_job_duration_seconds",
			Help:    "Conversion duration in seconds, including engine bootstrap",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_jobs_in_progress",
			Help: "Number of conversions currently running (0 or 1)",
		},
	)

	JobProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_job_progress_percent",
			Help: "Progress of the current conversion",
		},
	)

	StageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_stage_transitions_total",
			Help: "Total number of pipeline stage transitions",
		},
		[]string{"from", "to"},
	)

	CurrentStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clipfilter_stage",
			Help: "Current pipeline stage (1 for the active stage)",
		},
		[]string{"stage"},
	)
)

// Engine metrics
var (
	EngineBootstrapTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_engine_bootstrap_total",
			Help: "Total number of engine bootstrap attempts",
		},
		[]string{"status"}, // "success" or "error"
	)

	EngineBootstrapDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipfilter_engine_bootstrap_duration_seconds",
			Help:    "Engine bootstrap duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	EngineReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_engine_ready",
			Help: "Whether the video engine is loaded (1) or not (0)",
		},
	)
)

// Preview metrics
var (
	PreviewHandles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clipfilter_preview_handles",
			Help: "Number of live preview handles by slot",
		},
		[]string{"slot"},
	)

	PreviewBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clipfilter_preview_bytes",
			Help: "Bytes held by live preview handles by slot",
		},
		[]string{"slot"},
	)

	PreviewAllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_preview_allocations_total",
			Help: "Total number of preview handles allocated",
		},
		[]string{"slot"},
	)

	PreviewReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_preview_releases_total",
			Help: "Total number of preview handles released",
		},
		[]string{"slot"},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipfilter_uploads_total",
			Help: "Total number of file uploads by status",
		},
		[]string{"status"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipfilter_upload_bytes",
			Help:    "Size of accepted uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(256*1024, 2, 12),
		},
	)
)

// Memory metrics
var (
	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes (0 if unset)",
		},
	)

	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_go_mem_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_go_mem_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)

	GoGCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_go_gc_runs",
			Help: "Number of completed GC cycles",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the memory limit (0.0-1.0)",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipfilter_memory_paused",
			Help: "Whether uploads are refused due to memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipfilter_memory_gc_pauses_total",
			Help: "Total number of times uploads were paused for memory",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clipfilter_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version", "engine_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion, engineVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion, engineVersion).Set(1)
}
