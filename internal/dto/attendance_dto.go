package dto

import (
	"time"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// AttendanceMarkRequest records a present/absent mark for one student.
type AttendanceMarkRequest struct {
	StudentID uint      `json:"student_id" validate:"required,gt=0"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent"`
}

// AttendanceResponse serializes a stored attendance record.
type AttendanceResponse struct {
	ID         uint      `json:"id"`
	EducatorID uint      `json:"educator_id"`
	StudentID  uint      `json:"student_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
}

// AttendanceSummaryResponse aggregates a student's attendance.
type AttendanceSummaryResponse struct {
	StudentID  uint    `json:"student_id"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// NewAttendanceResponse converts an attendance record into a DTO.
func NewAttendanceResponse(model models.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:         model.ID,
		EducatorID: model.EducatorID,
		StudentID:  model.StudentID,
		Date:       model.Date,
		Status:     model.Status,
	}
}

// NewAttendanceResponseSlice converts attendance records into DTOs.
func NewAttendanceResponseSlice(records []models.AttendanceRecord) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}

	return responses
}
