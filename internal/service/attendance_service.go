package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
)

// ErrStudentNotFound indicates the referenced student account does not exist.
var ErrStudentNotFound = errors.New("student not found")

// AttendanceService records and reports daily attendance marks.
type AttendanceService interface {
	Mark(ctx context.Context, educatorID uint, payload dto.AttendanceMarkRequest) (dto.AttendanceResponse, error)
	ListForStudent(ctx context.Context, studentID uint, from, to time.Time) ([]dto.AttendanceResponse, error)
	ListForDate(ctx context.Context, educatorID uint, date time.Time) ([]dto.AttendanceResponse, error)
	SummaryForStudent(ctx context.Context, studentID uint) (dto.AttendanceSummaryResponse, error)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	users      repository.UserRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(attendance repository.AttendanceRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		attendance: attendance,
		users:      users,
		validator:  validate,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
	}
}

// Mark records a present/absent mark. Marking the same student twice on one
// day overwrites the earlier mark rather than producing a duplicate.
func (s *attendanceService) Mark(ctx context.Context, educatorID uint, payload dto.AttendanceMarkRequest) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}

	if _, err := s.users.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrStudentNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	record := models.AttendanceRecord{
		EducatorID: educatorID,
		StudentID:  payload.StudentID,
		Date:       payload.Date,
		Status:     payload.Status,
	}

	if err := s.attendance.Upsert(ctx, &record); err != nil {
		return dto.AttendanceResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", record.StudentID).
		Time("date", record.Date).
		Str("status", record.Status).
		Msg("attendance marked")

	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) ListForStudent(ctx context.Context, studentID uint, from, to time.Time) ([]dto.AttendanceResponse, error) {
	records, err := s.attendance.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, err
	}

	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) ListForDate(ctx context.Context, educatorID uint, date time.Time) ([]dto.AttendanceResponse, error) {
	records, err := s.attendance.ListByDate(ctx, educatorID, date)
	if err != nil {
		return nil, err
	}

	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) SummaryForStudent(ctx context.Context, studentID uint) (dto.AttendanceSummaryResponse, error) {
	summary, err := s.attendance.Summary(ctx, studentID)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	return dto.AttendanceSummaryResponse{
		StudentID:  studentID,
		Present:    summary.Present,
		Absent:     summary.Absent,
		Total:      summary.Total(),
		Percentage: summary.Percentage(),
	}, nil
}
