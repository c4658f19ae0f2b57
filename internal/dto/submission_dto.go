package dto

import (
	"time"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// SubmitRequest describes the multipart payload for a first submission.
type SubmitRequest struct {
	AssignmentID uint `form:"assignment_id" validate:"required,gt=0"`
	StudentID    uint `form:"student_id" validate:"required,gt=0"`
}

// ResubmitRequest replaces the stored file of an existing submission.
// ConfirmRegrade must be set when the submission is already graded; the
// client is expected to warn the student that a new AI evaluation will run.
type ResubmitRequest struct {
	StudentID      uint `form:"student_id" validate:"required,gt=0"`
	ConfirmRegrade bool `form:"confirm_regrade"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                   `json:"id"`
	AssignmentID uint                   `json:"assignment_id"`
	StudentID    uint                   `json:"student_id"`
	Title        string                 `json:"title"`
	Instructions string                 `json:"instructions"`
	MaxPoints    int                    `json:"max_points"`
	FileURL      string                 `json:"file_url"`
	FileName     string                 `json:"file_name"`
	FileType     string                 `json:"file_type"`
	SubmittedAt  time.Time              `json:"submitted_at"`
	Status       string                 `json:"status"`
	State        models.SubmissionState `json:"state"`
	Grade        *float64               `json:"grade"`
	Feedback     string                 `json:"feedback"`
	Suggestions  []string               `json:"suggestions"`
	GradedAt     *time.Time             `json:"graded_at"`
	Version      int                    `json:"version"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// SubmissionResult pairs the persisted submission with a non-fatal warning,
// such as automatic grading having failed and manual review being required.
type SubmissionResult struct {
	Submission SubmissionResponse `json:"submission"`
	Warning    string             `json:"warning,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Title:        model.Title,
		Instructions: model.Instructions,
		MaxPoints:    model.MaxPoints,
		FileURL:      model.FileURL,
		FileName:     model.FileName,
		FileType:     model.FileType,
		SubmittedAt:  model.SubmittedAt,
		Status:       model.Status,
		State:        models.StateOf(&model),
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		Suggestions:  model.SuggestionList(),
		GradedAt:     model.GradedAt,
		Version:      model.Version,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
