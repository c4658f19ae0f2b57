package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// AttendanceSummary aggregates a student's attendance counts.
type AttendanceSummary struct {
	StudentID uint
	Present   int64
	Absent    int64
}

// Total returns the number of recorded days.
func (s AttendanceSummary) Total() int64 {
	return s.Present + s.Absent
}

// Percentage computes the share of recorded days the student was present.
func (s AttendanceSummary) Percentage() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Present) / float64(total) * 100
}

// AttendanceRepository persists daily attendance marks.
type AttendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]models.AttendanceRecord, error)
	ListByDate(ctx context.Context, educatorID uint, date time.Time) ([]models.AttendanceRecord, error)
	Summary(ctx context.Context, studentID uint) (AttendanceSummary, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs a GORM-backed attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert creates the day's record or overwrites an existing mark for the
// same (student, date) pair.
func (r *attendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	record.Date = truncateToDay(record.Date)

	var existing models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", record.StudentID).
		Where("date = ?", record.Date).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(record).Error
		}
		return err
	}

	existing.Status = record.Status
	existing.EducatorID = record.EducatorID
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}

	*record = existing
	return nil
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)

	if !from.IsZero() {
		query = query.Where("date >= ?", truncateToDay(from))
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", truncateToDay(to))
	}

	var records []models.AttendanceRecord
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *attendanceRepository) ListByDate(ctx context.Context, educatorID uint, date time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Where("date = ?", truncateToDay(date)).
		Order("student_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *attendanceRepository) Summary(ctx context.Context, studentID uint) (AttendanceSummary, error) {
	summary := AttendanceSummary{StudentID: studentID}

	if err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("student_id = ?", studentID).
		Where("status = ?", models.AttendanceStatusPresent).
		Count(&summary.Present).Error; err != nil {
		return AttendanceSummary{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("student_id = ?", studentID).
		Where("status = ?", models.AttendanceStatusAbsent).
		Count(&summary.Absent).Error; err != nil {
		return AttendanceSummary{}, err
	}

	return summary, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
