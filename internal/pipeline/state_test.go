package pipeline

import (
	"encoding/json"
	"testing"
)

func stateIn(stage Stage) State {
	return State{Stage: stage, Progress: 42, StageMessage: "before", InputName: "old.mov", SourceURL: "/api/preview/src", ResultURL: "/api/preview/res"}
}

func TestTransitionFileSelected(t *testing.T) {
	ev := Event{Kind: EventFileSelected, Name: "clip.webm", URL: "/api/preview/new"}

	for _, stage := range []Stage{StageIdle, StageReady, StageComplete, StageError} {
		t.Run(stage.String(), func(t *testing.T) {
			got := Transition(stateIn(stage), ev)
			if got.Stage != StageReady {
				t.Errorf("Stage = %s, want ready", got.Stage)
			}
			if got.Progress != 0 {
				t.Errorf("Progress = %d, want 0", got.Progress)
			}
			if got.SourceURL != ev.URL || got.InputName != ev.Name {
				t.Errorf("source = %q %q, want %q %q", got.InputName, got.SourceURL, ev.Name, ev.URL)
			}
			if got.ResultURL != "" || got.Error != "" {
				t.Errorf("expected result and error cleared, got %+v", got)
			}
		})
	}

	for _, stage := range []Stage{StageLoadingCore, StageProcessing} {
		before := stateIn(stage)
		if got := Transition(before, ev); got != before {
			t.Errorf("file selection during %s should be ignored, got %+v", stage, got)
		}
	}
}

func TestTransitionConversionPath(t *testing.T) {
	s := Transition(InitialState(), Event{Kind: EventFileSelected, Name: "a.mp4", URL: "/src"})

	steps := []struct {
		ev        Event
		wantStage Stage
		wantPct   int
	}{
		{Event{Kind: EventLoadingCore}, StageLoadingCore, 0},
		{Event{Kind: EventCoreReady}, StageReady, 0},
		{Event{Kind: EventProcessing, JobID: "job-1"}, StageProcessing, 0},
		{Event{Kind: EventProgress, Percent: 40}, StageProcessing, 40},
		{Event{Kind: EventProgress, Percent: 20}, StageProcessing, 40},
		{Event{Kind: EventProgress, Percent: 99}, StageProcessing, 97},
		{Event{Kind: EventFinalizing}, StageProcessing, 98},
		{Event{Kind: EventProgress, Percent: 50}, StageProcessing, 98},
		{Event{Kind: EventCompleted, URL: "/res", PosterURL: "/res/poster"}, StageComplete, 100},
	}

	for i, step := range steps {
		s = Transition(s, step.ev)
		if s.Stage != step.wantStage || s.Progress != step.wantPct {
			t.Fatalf("step %d: got %s/%d, want %s/%d", i, s.Stage, s.Progress, step.wantStage, step.wantPct)
		}
	}
	if s.JobID != "job-1" || s.ResultURL != "/res" || s.PosterURL != "/res/poster" || s.SourceURL != "/src" {
		t.Errorf("unexpected final state %+v", s)
	}
	if s.StageMessage != MessageComplete {
		t.Errorf("StageMessage = %q", s.StageMessage)
	}
}

func TestTransitionProgressBounds(t *testing.T) {
	s := State{Stage: StageProcessing}
	for _, p := range []int{-10, 0, 5, 3, 97, 200, 96} {
		next := Transition(s, Event{Kind: EventProgress, Percent: p})
		if next.Progress < s.Progress {
			t.Errorf("progress went backwards: %d -> %d", s.Progress, next.Progress)
		}
		if next.Progress < 0 || next.Progress > MaxRunningProgress {
			t.Errorf("progress %d out of bounds", next.Progress)
		}
		s = next
	}
	if s.Progress != MaxRunningProgress {
		t.Errorf("final progress = %d, want %d", s.Progress, MaxRunningProgress)
	}

	idle := InitialState()
	if got := Transition(idle, Event{Kind: EventProgress, Percent: 50}); got != idle {
		t.Errorf("progress outside processing should be ignored, got %+v", got)
	}
}

func TestTransitionFailures(t *testing.T) {
	for _, stage := range []Stage{StageLoadingCore, StageReady, StageProcessing, StageComplete} {
		got := Transition(stateIn(stage), Event{Kind: EventFailed, Message: "boom"})
		if got.Stage != StageError || got.Error != "boom" {
			t.Errorf("%s: got %s/%q, want error/boom", stage, got.Stage, got.Error)
		}
		if got.ResultURL != "/api/preview/res" {
			t.Errorf("%s: failure must not touch the result, got %q", stage, got.ResultURL)
		}
	}

	got := Transition(InitialState(), Event{Kind: EventValidationFailed, Message: NoFileMessage})
	if got.Stage != StageError || got.Error != NoFileMessage {
		t.Errorf("validation failure: got %+v", got)
	}

	busy := stateIn(StageProcessing)
	if got := Transition(busy, Event{Kind: EventValidationFailed, Message: "x"}); got != busy {
		t.Errorf("validation failure during processing should be ignored, got %+v", got)
	}
}

func TestTransitionRetryFromErrorAndComplete(t *testing.T) {
	for _, stage := range []Stage{StageError, StageComplete} {
		s := stateIn(stage)
		s.Error = "previous"

		loading := Transition(s, Event{Kind: EventLoadingCore})
		if loading.Stage != StageLoadingCore || loading.Error != "" {
			t.Errorf("%s -> loadingCore: got %+v", stage, loading)
		}
		processing := Transition(s, Event{Kind: EventProcessing, JobID: "j"})
		if processing.Stage != StageProcessing || processing.Progress != 0 || processing.Error != "" {
			t.Errorf("%s -> processing: got %+v", stage, processing)
		}
	}
}

func TestTransitionIgnoresOutOfOrderEvents(t *testing.T) {
	tests := []struct {
		name  string
		state State
		ev    Event
	}{
		{"core ready when idle", InitialState(), Event{Kind: EventCoreReady}},
		{"loading from idle", InitialState(), Event{Kind: EventLoadingCore}},
		{"processing from idle", InitialState(), Event{Kind: EventProcessing}},
		{"finalizing when ready", stateIn(StageReady), Event{Kind: EventFinalizing}},
		{"completed when ready", stateIn(StageReady), Event{Kind: EventCompleted, URL: "/x"}},
		{"failure when idle", InitialState(), Event{Kind: EventFailed, Message: "x"}},
		{"reset while processing", stateIn(StageProcessing), Event{Kind: EventReset}},
		{"unknown event", stateIn(StageReady), Event{Kind: EventKind(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.state, tt.ev); got != tt.state {
				t.Errorf("expected no change, got %+v", got)
			}
		})
	}
}

func TestTransitionReset(t *testing.T) {
	got := Transition(stateIn(StageComplete), Event{Kind: EventReset})
	if got != InitialState() {
		t.Errorf("reset = %+v, want initial state", got)
	}
}

func TestStageText(t *testing.T) {
	for _, stage := range Stages {
		text, err := stage.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error: %v", stage, err)
		}
		var back Stage
		if err := back.UnmarshalText(text); err != nil || back != stage {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, back, err)
		}
	}

	if _, err := Stage(42).MarshalText(); err == nil {
		t.Error("expected error for invalid stage")
	}
	var s Stage
	if err := s.UnmarshalText([]byte("finished")); err == nil {
		t.Error("expected error for unknown stage name")
	}
	if Stage(42).String() != "Stage(42)" {
		t.Errorf("String() = %q", Stage(42).String())
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(State{Stage: StageLoadingCore, Progress: 0, StageMessage: MessageLoading})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"stage":"loadingCore","progress":0,"stageMessage":"Loading video engine..."}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestStageBusy(t *testing.T) {
	for _, stage := range Stages {
		want := stage == StageLoadingCore || stage == StageProcessing
		if stage.Busy() != want {
			t.Errorf("%s.Busy() = %v, want %v", stage, stage.Busy(), want)
		}
	}
}
