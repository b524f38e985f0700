// Package pipeline sequences a clip from selection to filtered result.
//
// The lifecycle is a small state machine:
//
//	idle --select--> ready --convert--> [loadingCore -->] processing --> complete
//	                                                       |
//	                        any failure -----------------> error
//
// Transition is a pure function over State and Event, so the machine can be
// exercised without an engine. The Controller owns the single job slot,
// applies transitions, talks to the engine through an EngineProvider and
// keeps the source and result previews in a preview.Registry.
//
// A conversion stages the upload as input.<ext>, runs the fixed filter graph
// into output.mp4, reads the result back and removes both engine files on
// every exit path. Progress stays within 0-97 while the engine runs, moves to
// 98 while the output is collected and to 100 on completion.
//
// State changes are published to subscribers through single-slot channels
// that always hold the newest state:
//
//	states, cancel := ctrl.Subscribe()
//	defer cancel()
//	for s := range states {
//	    render(s)
//	}
package pipeline
