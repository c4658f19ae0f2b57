package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
)

// DashboardService produces the aggregated per-student progress view.
type DashboardService interface {
	GetStudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	InvalidateStudent(ctx context.Context, studentID uint)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator. The cache client may
// be nil, in which case every request recomputes from the database.
func NewDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *dashboardService) GetStudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	// Students only ever see published assignments; drafts are invisible to
	// the dashboard as well.
	assignments, err := s.assignments.ListPublished(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// InvalidateStudent drops the cached dashboard after a mutation so the next
// read reflects the new submission or grade.
func (s *dashboardService) InvalidateStudent(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()
	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var gradeTotal float64
	var gradedCount int

	for _, assignment := range assignments {
		summary.TotalAssignments++
		submission, submitted := submissionByAssignment[assignment.ID]
		overdue := assignment.IsPastDue(now)

		status := "pending"
		var submissionID *uint
		submissionURL := ""
		var grade *float64
		var gradedAt *time.Time
		feedback := ""
		updatedAt := assignment.UpdatedAt

		if submitted {
			submissionID = &submission.ID
			submissionURL = submission.FileURL
			feedback = submission.Feedback
			updatedAt = submission.UpdatedAt
			summary.Submitted++

			switch submission.Status {
			case models.SubmissionStatusGraded:
				status = models.SubmissionStatusGraded
				summary.Graded++
				gradedAt = submission.GradedAt
				if submission.Grade != nil {
					// Grades are normalized to percentages so assignments with
					// different point scales average meaningfully.
					if submission.MaxPoints > 0 {
						gradeTotal += *submission.Grade / float64(submission.MaxPoints) * 100
					}
					gradedCount++
					grade = submission.Grade
				}
			default:
				status = models.SubmissionStatusSubmitted
				summary.Pending++
			}
		} else {
			summary.Pending++
			if overdue {
				summary.Overdue++
			}
		}

		if submitted && overdue && submission.Status != models.SubmissionStatusGraded {
			summary.Overdue++
		}

		progress = append(progress, dto.AssignmentProgress{
			AssignmentID:  assignment.ID,
			Title:         assignment.Title,
			DueDate:       assignment.DueDate,
			MaxPoints:     assignment.Points,
			Status:        status,
			SubmissionID:  submissionID,
			SubmissionURL: submissionURL,
			Grade:         grade,
			Feedback:      feedback,
			Overdue:       overdue && status != models.SubmissionStatusGraded,
			UpdatedAt:     updatedAt,
			GradedAt:      gradedAt,
		})
	}

	if gradedCount > 0 {
		summary.AverageGrade = gradeTotal / float64(gradedCount)
	}

	if summary.TotalAssignments > 0 {
		summary.CompletionRate = float64(summary.Graded) / float64(summary.TotalAssignments) * 100
	}

	activities := make([]dto.SubmissionActivity, 0, minInt(5, len(submissions)))
	for idx, submission := range submissions {
		if idx >= 5 {
			break
		}
		activities = append(activities, dto.SubmissionActivity{
			SubmissionID:   submission.ID,
			AssignmentID:   submission.AssignmentID,
			AssignmentName: submission.Assignment.Title,
			Status:         submission.Status,
			Grade:          submission.Grade,
			Feedback:       submission.Feedback,
			SubmittedAt:    submission.SubmittedAt,
			UpdatedAt:      submission.UpdatedAt,
		})
	}

	return dto.StudentDashboardResponse{
		Summary:           summary,
		Assignments:       progress,
		RecentSubmissions: activities,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
