// Package metrics provides Prometheus instrumentation for clipfilter.
//
// All metrics are registered with the default registry through promauto and
// prefixed with "clipfilter_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Conversion Metrics
//
//   - JobsTotal: Counter of conversion requests by outcome (success/error/invalid)
//   - JobDuration: Histogram of conversion duration
//   - JobsInProgress: Gauge of running conversions
//   - JobProgress: Gauge of the running conversion's percentage
//   - StageTransitionsTotal: Counter of pipeline stage transitions
//   - CurrentStage: Gauge set to 1 for the active stage
//
// ## Engine Metrics
//
//   - EngineBootstrapTotal: Counter of bootstrap attempts by status
//   - EngineBootstrapDuration: Histogram of bootstrap duration
//   - EngineReady: Gauge indicating a loaded engine
//
// ## Preview Metrics
//
//   - PreviewHandles: Gauge of live handles by slot (source/result)
//   - PreviewBytes: Gauge of bytes held by live handles by slot
//   - PreviewAllocationsTotal, PreviewReleasesTotal: Counters by slot
//
// ## Upload and Memory Metrics
//
//   - UploadsTotal: Counter of uploads by status
//   - UploadBytes: Histogram of accepted upload sizes
//   - GoMemLimit, GoMemAllocBytes, GoMemSysBytes, GoGCRuns: runtime memory
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses: upload backpressure
//
// # Observers
//
// The pipeline, preview and session packages report through small observer
// interfaces so they never import this package. Wire the implementations at
// startup:
//
//	reg := preview.NewRegistry(metrics.NewPreviewObserver())
//	sess := session.New(factory, res, session.WithObserver(metrics.NewSessionObserver()))
//	ctrl := pipeline.New(sess, reg, pipeline.WithObserver(metrics.NewPipelineObserver()))
//
// # Collector
//
// [Collector] samples runtime memory statistics and an optional
// [StatsProvider] on an interval:
//
//	collector := metrics.NewCollector(provider, 15*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Conversion failure rate:
//
//	sum(rate(clipfilter_jobs_total{outcome="error"}[1h])) / sum(rate(clipfilter_jobs_total[1h]))
//
// P95 conversion time:
//
//	histogram_quantile(0.95, sum(rate(clipfilter_job_duration_seconds_bucket[1h])) by (le))
//
// Memory held by previews:
//
//	sum(clipfilter_preview_bytes)
package metrics
