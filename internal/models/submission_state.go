package models

import (
	"errors"
	"fmt"
)

// SubmissionState enumerates the lifecycle states of a student's submission
// slot for a single assignment.
type SubmissionState string

const (
	// SubmissionStateNone means no submission exists for the assignment yet.
	SubmissionStateNone SubmissionState = "none"
	// SubmissionStateSubmitted means a file is stored and awaiting a grade.
	SubmissionStateSubmitted SubmissionState = "submitted"
	// SubmissionStateGraded means grading has produced a final score.
	SubmissionStateGraded SubmissionState = "graded"
)

// SubmissionEvent enumerates the transitions a student or grader can trigger.
type SubmissionEvent string

const (
	// SubmissionEventSubmit stores the first file for an assignment.
	SubmissionEventSubmit SubmissionEvent = "submit"
	// SubmissionEventGrade records a grading outcome.
	SubmissionEventGrade SubmissionEvent = "grade"
	// SubmissionEventResubmit replaces the stored file and re-runs grading.
	SubmissionEventResubmit SubmissionEvent = "resubmit"
	// SubmissionEventRemove deletes the submission.
	SubmissionEventRemove SubmissionEvent = "remove"
)

// ErrInvalidTransition indicates the requested event is not allowed from the
// current submission state.
var ErrInvalidTransition = errors.New("invalid submission state transition")

var submissionTransitions = map[SubmissionState]map[SubmissionEvent]SubmissionState{
	SubmissionStateNone: {
		SubmissionEventSubmit: SubmissionStateSubmitted,
	},
	SubmissionStateSubmitted: {
		SubmissionEventGrade:    SubmissionStateGraded,
		SubmissionEventResubmit: SubmissionStateSubmitted,
		SubmissionEventRemove:   SubmissionStateNone,
	},
	SubmissionStateGraded: {
		// Resubmitting a graded submission discards the grade and triggers a
		// new evaluation. Callers must obtain explicit confirmation first.
		SubmissionEventResubmit: SubmissionStateSubmitted,
	},
}

// NextSubmissionState applies an event to a state and returns the successor.
func NextSubmissionState(current SubmissionState, event SubmissionEvent) (SubmissionState, error) {
	if targets, ok := submissionTransitions[current]; ok {
		if next, ok := targets[event]; ok {
			return next, nil
		}
	}
	return current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
}

// StateOf derives the submission state from a persisted record.
func StateOf(submission *Submission) SubmissionState {
	if submission == nil || submission.ID == 0 {
		return SubmissionStateNone
	}
	if submission.IsGraded() {
		return SubmissionStateGraded
	}
	return SubmissionStateSubmitted
}
