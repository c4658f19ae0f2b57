package models

import "time"

// AttendanceRecord represents a single present/absent mark an educator made
// for a student on a given day. One record exists per (student, date).
type AttendanceRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EducatorID uint      `gorm:"not null;index" json:"educator_id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_attendance_student_date" json:"student_id"`
	Date       time.Time `gorm:"not null;uniqueIndex:idx_attendance_student_date" json:"date"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	// AttendanceStatusPresent marks the student as present.
	AttendanceStatusPresent = "present"
	// AttendanceStatusAbsent marks the student as absent.
	AttendanceStatusAbsent = "absent"
)
