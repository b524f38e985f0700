package metrics

import (
	"clipfilter/internal/pipeline"
	"clipfilter/internal/preview"
)

// UploadStatuses lists the status labels of UploadsTotal.
var UploadStatuses = []string{"accepted", "invalid", "unsupported", "too_large", "busy", "memory"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range pipeline.Outcomes {
		JobsTotal.WithLabelValues(string(outcome))
	}

	for _, stage := range pipeline.Stages {
		CurrentStage.WithLabelValues(stage.String()).Set(0)
	}
	CurrentStage.WithLabelValues(pipeline.StageIdle.String()).Set(1)

	for _, status := range []string{"success", "error"} {
		EngineBootstrapTotal.WithLabelValues(status)
	}

	for _, slot := range preview.Slots {
		PreviewHandles.WithLabelValues(slot.String())
		PreviewBytes.WithLabelValues(slot.String())
		PreviewAllocationsTotal.WithLabelValues(slot.String())
		PreviewReleasesTotal.WithLabelValues(slot.String())
	}

	for _, status := range UploadStatuses {
		UploadsTotal.WithLabelValues(status)
	}
}
