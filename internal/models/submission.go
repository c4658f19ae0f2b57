package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission represents a student's response artifact to an assignment plus
// its grading outcome. Instructions and MaxPoints are snapshotted from the
// assignment at submit time so the grading context always reflects what the
// student saw, even if the assignment is edited later.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submissions_student_assignment" json:"assignment_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submissions_student_assignment" json:"student_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Instructions string         `gorm:"type:text" json:"instructions"`
	MaxPoints    int            `gorm:"not null;default:100" json:"max_points"`
	FileURL      string         `gorm:"size:512;not null" json:"file_url"`
	FileName     string         `gorm:"size:255;not null" json:"file_name"`
	FileType     string         `gorm:"size:128" json:"file_type"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
	Status       string         `gorm:"size:32;not null" json:"status"`
	Grade        *float64       `json:"grade"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	Suggestions  datatypes.JSON `gorm:"type:json" json:"suggestions"`
	GradedAt     *time.Time     `json:"graded_at"`
	Version      int            `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User           `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

const (
	// SubmissionStatusSubmitted indicates the file is stored but no grade exists yet.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates an automatic or manual grade has been recorded.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded && s.Grade != nil
}

// SuggestionList decodes the stored suggestions JSON array.
func (s Submission) SuggestionList() []string {
	if len(s.Suggestions) == 0 {
		return nil
	}
	var suggestions []string
	if err := json.Unmarshal(s.Suggestions, &suggestions); err != nil {
		return nil
	}
	return suggestions
}

// SetSuggestions encodes the suggestion slice into the JSON column.
func (s *Submission) SetSuggestions(suggestions []string) error {
	if len(suggestions) == 0 {
		s.Suggestions = nil
		return nil
	}
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	s.Suggestions = datatypes.JSON(payload)
	return nil
}
