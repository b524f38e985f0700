package pipeline

import (
	"fmt"
)

// Stage is the lifecycle position of the current job.
type Stage int

const (
	StageIdle Stage = iota
	StageLoadingCore
	StageReady
	StageProcessing
	StageComplete
	StageError
)

var stageNames = [...]string{
	StageIdle:        "idle",
	StageLoadingCore: "loadingCore",
	StageReady:       "ready",
	StageProcessing:  "processing",
	StageComplete:    "complete",
	StageError:       "error",
}

// Stages lists every stage in declaration order.
var Stages = []Stage{StageIdle, StageLoadingCore, StageReady, StageProcessing, StageComplete, StageError}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Busy reports whether a job owns the engine in this stage.
func (s Stage) Busy() bool {
	return s == StageLoadingCore || s == StageProcessing
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stageNames) {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	for i, name := range stageNames {
		if name == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// Status messages shown alongside each stage.
const (
	MessageIdle       = "Choose a video to begin."
	MessageReady      = "Ready to convert."
	MessageLoading    = "Loading video engine..."
	MessageProcessing = "Applying filters..."
	MessageFinalizing = "Finalizing..."
	MessageComplete   = "Done! Compare the clips below."
	MessageFailed     = "Something went wrong."
)

const (
	// MaxRunningProgress bounds progress while the engine job runs.
	MaxRunningProgress = 97
	// FinalizeProgress is reported once the engine job has finished and the
	// output is being collected.
	FinalizeProgress = 98
)

// State is a snapshot of the controller.
type State struct {
	Stage        Stage  `json:"stage"`
	Progress     int    `json:"progress"`
	StageMessage string `json:"stageMessage"`
	Error        string `json:"error,omitempty"`
	InputName    string `json:"inputName,omitempty"`
	JobID        string `json:"jobId,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	ResultURL    string `json:"resultUrl,omitempty"`
	PosterURL    string `json:"posterUrl,omitempty"`
}

// InitialState is the state of a fresh controller.
func InitialState() State {
	return State{Stage: StageIdle, StageMessage: MessageIdle}
}

// EventKind identifies an Event.
type EventKind int

const (
	// EventFileSelected carries Name and URL of the new source.
	EventFileSelected EventKind = iota
	// EventValidationFailed carries Message.
	EventValidationFailed
	EventLoadingCore
	EventCoreReady
	// EventProcessing carries JobID.
	EventProcessing
	// EventProgress carries Percent.
	EventProgress
	EventFinalizing
	// EventCompleted carries URL and PosterURL of the result.
	EventCompleted
	// EventFailed carries Message.
	EventFailed
	EventReset
)

// Event is an input to Transition.
type Event struct {
	Kind      EventKind
	Name      string
	URL       string
	PosterURL string
	JobID     string
	Message   string
	Percent   int
}

// Transition returns the state that follows s after ev. Events that are not
// valid in the current stage leave s unchanged. It has no side effects.
func Transition(s State, ev Event) State {
	switch ev.Kind {
	case EventFileSelected:
		if s.Stage.Busy() {
			return s
		}
		return State{
			Stage:        StageReady,
			StageMessage: MessageReady,
			InputName:    ev.Name,
			SourceURL:    ev.URL,
		}

	case EventValidationFailed:
		if s.Stage.Busy() {
			return s
		}
		s.Stage = StageError
		s.StageMessage = MessageFailed
		s.Error = ev.Message
		return s

	case EventLoadingCore:
		if s.Stage != StageReady && s.Stage != StageComplete && s.Stage != StageError {
			return s
		}
		s.Stage = StageLoadingCore
		s.StageMessage = MessageLoading
		s.Error = ""
		return s

	case EventCoreReady:
		if s.Stage != StageLoadingCore {
			return s
		}
		s.Stage = StageReady
		s.StageMessage = MessageReady
		return s

	case EventProcessing:
		if s.Stage != StageReady && s.Stage != StageComplete && s.Stage != StageError {
			return s
		}
		s.Stage = StageProcessing
		s.StageMessage = MessageProcessing
		s.Progress = 0
		s.Error = ""
		s.JobID = ev.JobID
		return s

	case EventProgress:
		if s.Stage != StageProcessing {
			return s
		}
		p := ev.Percent
		if p > MaxRunningProgress {
			p = MaxRunningProgress
		}
		if p > s.Progress {
			s.Progress = p
		}
		return s

	case EventFinalizing:
		if s.Stage != StageProcessing {
			return s
		}
		s.Progress = FinalizeProgress
		s.StageMessage = MessageFinalizing
		return s

	case EventCompleted:
		if s.Stage != StageProcessing {
			return s
		}
		s.Stage = StageComplete
		s.Progress = 100
		s.StageMessage = MessageComplete
		s.ResultURL = ev.URL
		s.PosterURL = ev.PosterURL
		return s

	case EventFailed:
		if s.Stage == StageIdle {
			return s
		}
		s.Stage = StageError
		s.StageMessage = MessageFailed
		s.Error = ev.Message
		return s

	case EventReset:
		if s.Stage.Busy() {
			return s
		}
		return InitialState()
	}
	return s
}
