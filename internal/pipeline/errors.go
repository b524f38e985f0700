package pipeline

import (
	"errors"
)

// NoFileMessage is reported when a conversion is requested before a file has
// been selected.
const NoFileMessage = "Please choose a video first."

// fallbackMessage is shown when a failure carries no text of its own.
const fallbackMessage = "Conversion failed."

// ErrBusy is returned when an operation would disturb a job in flight.
var ErrBusy = errors.New("a conversion is already in progress")

// ValidationError reports a request the user can correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransformationError reports a failure while staging, running or collecting
// an engine job.
type TransformationError struct {
	Step string
	Err  error
}

func (e *TransformationError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fallbackMessage
	}
	return e.Err.Error()
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// Message extracts the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}
