package dto

import (
	"time"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=255"`
	Instructions string    `json:"instructions" validate:"required,min=3"`
	Points       int       `json:"points" validate:"omitempty,gt=0,lte=1000"`
	DueDate      time.Time `json:"due_date" validate:"required"`
}

// AssignmentUpdateRequest patches assignment fields.
type AssignmentUpdateRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Instructions *string    `json:"instructions" validate:"omitempty,min=3"`
	Points       *int       `json:"points" validate:"omitempty,gt=0,lte=1000"`
	DueDate      *time.Time `json:"due_date"`
}

// AssignmentListQuery describes query string filters for listing assignments.
type AssignmentListQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status" validate:"omitempty,oneof=draft published"`
	Sort     string `query:"sort"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID               uint      `json:"id"`
	EducatorID       uint      `json:"educator_id"`
	Title            string    `json:"title"`
	Instructions     string    `json:"instructions"`
	Points           int       `json:"points"`
	DueDate          time.Time `json:"due_date"`
	Status           string    `json:"status"`
	TotalSubmissions int       `json:"total_submissions"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AssignmentListResponse wraps a page of assignments.
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               model.ID,
		EducatorID:       model.EducatorID,
		Title:            model.Title,
		Instructions:     model.Instructions,
		Points:           model.Points,
		DueDate:          model.DueDate,
		Status:           model.Status,
		TotalSubmissions: model.TotalSubmissions,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
