package report

import (
	"errors"
	"fmt"
)

const (
	MsgPhotoRequired    = "Please upload a photo"
	MsgLocationRequired = "Please provide location coordinates"
	MsgSubmitFailed     = "Failed to submit report. Please try again."
)

var (
	ErrSubmitInProgress  = errors.New("a submission is already in progress")
	ErrAlreadySubmitted  = errors.New("report already submitted")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrResetNotAllowed   = errors.New("reset is only allowed before submitting or after a failure")
	ErrDraftLocked       = errors.New("draft cannot change while submitting or after success")
	ErrStaleDraft        = errors.New("draft was reset while the request was in flight")
	ErrMissingDependency = errors.New("missing workflow dependency")
)

// SubmissionError is a failed submission attempt. The draft is kept and may
// be submitted again.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit report: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Message() string { return MsgSubmitFailed }
