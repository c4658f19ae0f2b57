package models

import "time"

// Assignment represents an educator-authored task students respond to.
type Assignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EducatorID       uint      `gorm:"not null;index" json:"educator_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Instructions     string    `gorm:"type:text" json:"instructions"`
	Points           int       `gorm:"not null;default:100" json:"points"`
	DueDate          time.Time `gorm:"not null" json:"due_date"`
	Status           string    `gorm:"size:16;not null;default:draft" json:"status"`
	TotalSubmissions int       `gorm:"not null;default:0" json:"total_submissions"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Submissions      []Submission
}

// DefaultAssignmentPoints is the maximum score when an educator does not set one.
const DefaultAssignmentPoints = 100

const (
	// AssignmentStatusDraft marks assignments not yet visible to students.
	AssignmentStatusDraft = "draft"
	// AssignmentStatusPublished marks assignments open for submissions.
	AssignmentStatusPublished = "published"
)

// IsPublished reports whether students may see and submit to the assignment.
func (a Assignment) IsPublished() bool {
	return a.Status == AssignmentStatusPublished
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
