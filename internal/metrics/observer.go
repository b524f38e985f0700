package metrics

import (
	"time"

	"clipfilter/internal/pipeline"
	"clipfilter/internal/preview"
	"clipfilter/internal/session"
)

// pipelineObserver implements pipeline.Observer using the job metrics.
type pipelineObserver struct{}

// NewPipelineObserver creates an observer that records controller activity.
func NewPipelineObserver() pipeline.Observer {
	return &pipelineObserver{}
}

func (o *pipelineObserver) StageChanged(from, to pipeline.Stage) {
	StageTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	CurrentStage.WithLabelValues(from.String()).Set(0)
	CurrentStage.WithLabelValues(to.String()).Set(1)

	switch {
	case to == pipeline.StageProcessing:
		JobsInProgress.Set(1)
	case from == pipeline.StageProcessing:
		JobsInProgress.Set(0)
	}
}

func (o *pipelineObserver) ProgressChanged(percent int) {
	JobProgress.Set(float64(percent))
}

func (o *pipelineObserver) JobFinished(outcome pipeline.Outcome, duration time.Duration) {
	JobsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome != pipeline.OutcomeInvalid {
		JobDuration.Observe(duration.Seconds())
	}
}

// previewObserver implements preview.Observer.
type previewObserver struct{}

// NewPreviewObserver creates an observer that tracks live preview handles.
func NewPreviewObserver() preview.Observer {
	return &previewObserver{}
}

func (o *previewObserver) HandleAllocated(slot preview.Slot, bytes int64) {
	PreviewAllocationsTotal.WithLabelValues(slot.String()).Inc()
	PreviewHandles.WithLabelValues(slot.String()).Inc()
	PreviewBytes.WithLabelValues(slot.String()).Add(float64(bytes))
}

func (o *previewObserver) HandleReleased(slot preview.Slot, bytes int64) {
	PreviewReleasesTotal.WithLabelValues(slot.String()).Inc()
	PreviewHandles.WithLabelValues(slot.String()).Dec()
	PreviewBytes.WithLabelValues(slot.String()).Sub(float64(bytes))
}

// sessionObserver implements session.Observer.
type sessionObserver struct{}

// NewSessionObserver creates an observer that records engine bootstraps.
func NewSessionObserver() session.Observer {
	return &sessionObserver{}
}

func (o *sessionObserver) ObserveBootstrap(duration time.Duration, err error) {
	EngineBootstrapDuration.Observe(duration.Seconds())
	if err != nil {
		EngineBootstrapTotal.WithLabelValues("error").Inc()
		return
	}
	EngineBootstrapTotal.WithLabelValues("success").Inc()
	EngineReady.Set(1)
}
