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

var (
	// ErrAssignmentNotOwner indicates the acting educator does not own the assignment.
	ErrAssignmentNotOwner = errors.New("assignment belongs to another educator")
	// ErrAssignmentHasSubmissions rejects unpublishing once students have submitted.
	ErrAssignmentHasSubmissions = errors.New("assignment already has submissions")
)

// AssignmentService manages the educator-facing assignment lifecycle and the
// student-facing published listing.
type AssignmentService interface {
	Create(ctx context.Context, educatorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, educatorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, id, educatorID uint) (dto.AssignmentResponse, error)
	Unpublish(ctx context.Context, id, educatorID uint) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, educatorID uint) error
	GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error)
	ListForEducator(ctx context.Context, educatorID uint, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error)
	ListPublished(ctx context.Context) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

// Create stores a new assignment in draft state. Students cannot see or
// submit to it until it is published.
func (s *assignmentService) Create(ctx context.Context, educatorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	points := payload.Points
	if points <= 0 {
		points = models.DefaultAssignmentPoints
	}

	assignment := models.Assignment{
		EducatorID:   educatorID,
		Title:        payload.Title,
		Instructions: payload.Instructions,
		Points:       points,
		DueDate:      payload.DueDate,
		Status:       models.AssignmentStatusDraft,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("educator_id", educatorID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id, educatorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadOwned(ctx, id, educatorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Instructions != nil {
		assignment.Instructions = *payload.Instructions
	}
	if payload.Points != nil {
		assignment.Points = *payload.Points
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Publish makes the assignment visible to students and opens submissions.
func (s *assignmentService) Publish(ctx context.Context, id, educatorID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.loadOwned(ctx, id, educatorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		assignment.Status = models.AssignmentStatusPublished
		if err := s.assignments.Update(ctx, &assignment); err != nil {
			return dto.AssignmentResponse{}, err
		}
		s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment published")
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Unpublish returns the assignment to draft. Refused once submissions exist:
// pulling work out from under students would orphan their submissions.
func (s *assignmentService) Unpublish(ctx context.Context, id, educatorID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.loadOwned(ctx, id, educatorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.TotalSubmissions > 0 {
		return dto.AssignmentResponse{}, ErrAssignmentHasSubmissions
	}

	if assignment.Status != models.AssignmentStatusDraft {
		assignment.Status = models.AssignmentStatusDraft
		if err := s.assignments.Update(ctx, &assignment); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete removes the assignment and, through the repository, every submission
// attached to it.
func (s *assignmentService) Delete(ctx context.Context, id, educatorID uint) error {
	if _, err := s.loadOwned(ctx, id, educatorID); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")

	return nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error) {
	return s.list(ctx, query, nil)
}

func (s *assignmentService) ListForEducator(ctx context.Context, educatorID uint, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error) {
	return s.list(ctx, query, &educatorID)
}

func (s *assignmentService) ListPublished(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) list(ctx context.Context, query dto.AssignmentListQuery, educatorID *uint) (dto.AssignmentListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.AssignmentListResponse{}, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	assignments, total, err := s.assignments.List(ctx, repository.AssignmentFilter{
		Search:     query.Search,
		Status:     query.Status,
		EducatorID: educatorID,
		Sort:       query.Sort,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Assignments: dto.NewAssignmentResponseSlice(assignments),
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}

func (s *assignmentService) loadOwned(ctx context.Context, id, educatorID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if assignment.EducatorID != educatorID {
		return models.Assignment{}, ErrAssignmentNotOwner
	}

	return assignment, nil
}
