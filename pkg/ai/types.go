package ai

import "context"

// GradeInput carries the grading context for one submission. Instructions and
// MaxPoints come from the snapshot taken at submit time, Content from the
// best-effort extraction of the uploaded file.
type GradeInput struct {
	AssignmentTitle string
	Instructions    string
	MaxPoints       int
	FileName        string
	FileType        string
	Content         string
}

// Evaluation is a usable grading result produced by the model.
type Evaluation struct {
	Grade       float64  `json:"grade"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Outcome is the tagged result of a grading attempt. Exactly one branch is
// meaningful: Graded is set when the model returned a parsable result, and
// Reason describes why it did not. Downstream code must check IsGraded
// instead of null-probing individual fields.
type Outcome struct {
	Graded *Evaluation
	Reason string
}

// IsGraded reports whether the attempt produced a usable evaluation.
func (o Outcome) IsGraded() bool {
	return o.Graded != nil
}

// Ungraded builds the degraded-mode outcome for a failed grading attempt.
func Ungraded(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Grader describes a model endpoint capable of grading a submission. A
// transport-level failure is returned as an error; an unusable model response
// is reported through the Ungraded outcome branch. Neither may block
// persistence of the submission itself.
type Grader interface {
	Grade(ctx context.Context, input GradeInput) (Outcome, error)
}
