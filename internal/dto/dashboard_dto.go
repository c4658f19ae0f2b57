package dto

import "time"

// ProgressSummary aggregates a student's standing across all assignments.
type ProgressSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	Submitted        int     `json:"submitted"`
	Graded           int     `json:"graded"`
	Pending          int     `json:"pending"`
	Overdue          int     `json:"overdue"`
	AverageGrade     float64 `json:"average_grade"`
	CompletionRate   float64 `json:"completion_rate"`
}

// AssignmentProgress describes one assignment from the student's perspective.
type AssignmentProgress struct {
	AssignmentID  uint       `json:"assignment_id"`
	Title         string     `json:"title"`
	DueDate       time.Time  `json:"due_date"`
	MaxPoints     int        `json:"max_points"`
	Status        string     `json:"status"`
	SubmissionID  *uint      `json:"submission_id"`
	SubmissionURL string     `json:"submission_url"`
	Grade         *float64   `json:"grade"`
	Feedback      string     `json:"feedback"`
	Overdue       bool       `json:"overdue"`
	UpdatedAt     time.Time  `json:"updated_at"`
	GradedAt      *time.Time `json:"graded_at"`
}

// SubmissionActivity summarizes recent submissions for the dashboard feed.
type SubmissionActivity struct {
	SubmissionID   uint      `json:"submission_id"`
	AssignmentID   uint      `json:"assignment_id"`
	AssignmentName string    `json:"assignment_name"`
	Status         string    `json:"status"`
	Grade          *float64  `json:"grade"`
	Feedback       string    `json:"feedback"`
	SubmittedAt    time.Time `json:"submitted_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StudentDashboardResponse is the aggregated dashboard payload.
type StudentDashboardResponse struct {
	Summary           ProgressSummary      `json:"summary"`
	Assignments       []AssignmentProgress `json:"assignments"`
	RecentSubmissions []SubmissionActivity `json:"recent_submissions"`
}
