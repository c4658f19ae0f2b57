package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
	"github.com/spark-iq/spark-iq-api/pkg/ai"
)

var (
	// ErrAssignmentNotFound indicates the referenced assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAssignmentNotPublished indicates students cannot submit to the assignment yet.
	ErrAssignmentNotPublished = errors.New("assignment is not published")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionExists indicates the student already has a submission for
	// the assignment; resubmission must be used instead.
	ErrSubmissionExists = errors.New("submission already exists for this assignment")
	// ErrSubmissionGraded rejects student-facing deletion of graded work.
	ErrSubmissionGraded = errors.New("graded submissions cannot be removed")
	// ErrRegradeConfirmationRequired is returned when resubmitting graded
	// work without the explicit confirmation flag.
	ErrRegradeConfirmationRequired = errors.New("resubmitting graded work requires confirmation")
	// ErrNotSubmissionOwner indicates the acting student does not own the submission.
	ErrNotSubmissionOwner = errors.New("submission belongs to another student")
	// ErrUploadFailed indicates the file could not be stored; the whole
	// submission attempt is aborted and no record is written.
	ErrUploadFailed = errors.New("file upload failed")
)

// ManualReviewWarning is surfaced to the student when automatic grading did
// not produce a usable result. The submission itself still succeeded.
const ManualReviewWarning = "automatic grading failed; the submission is saved and awaits manual review"

// FileStorage abstracts the blob store holding submission files.
type FileStorage interface {
	Upload(ctx context.Context, path string, reader io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// GradingNotifier receives grading outcomes so users can be informed out of
// band. Implementations must not block the submission flow.
type GradingNotifier interface {
	SubmissionGraded(ctx context.Context, submission models.Submission)
	SubmissionNeedsReview(ctx context.Context, submission models.Submission, reason string)
}

// SubmissionService orchestrates the submit / grade / resubmit / remove
// workflow. All mutations end in a reload of the authoritative record so
// callers never observe optimistic state.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitRequest, file *multipart.FileHeader) (dto.SubmissionResult, error)
	Resubmit(ctx context.Context, id uint, payload dto.ResubmitRequest, file *multipart.FileHeader) (dto.SubmissionResult, error)
	Remove(ctx context.Context, id, studentID uint) error
	AdminRemove(ctx context.Context, id uint) error
	GetForAssignment(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	storage     FileStorage
	extractor   *ContentExtractor
	grader      ai.Grader
	notifier    GradingNotifier
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the workflow service. The notifier may be
// nil when out-of-band notifications are disabled.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	storage FileStorage,
	extractor *ContentExtractor,
	grader ai.Grader,
	notifier GradingNotifier,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		storage:     storage,
		extractor:   extractor,
		grader:      grader,
		notifier:    notifier,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/spark-iq/spark-iq-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitRequest, file *multipart.FileHeader) (dto.SubmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.Int64("submission.assignment_id", int64(payload.AssignmentID)),
		attribute.Int64("submission.student_id", int64(payload.StudentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResult{}, err
	}

	if file == nil {
		return dto.SubmissionResult{}, fmt.Errorf("submission file is required")
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResult{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResult{}, err
	}

	if !assignment.IsPublished() {
		return dto.SubmissionResult{}, ErrAssignmentNotPublished
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, payload.AssignmentID, payload.StudentID); err == nil {
		return dto.SubmissionResult{}, ErrSubmissionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResult{}, err
	}

	state, err := models.NextSubmissionState(models.SubmissionStateNone, models.SubmissionEventSubmit)
	if err != nil {
		return dto.SubmissionResult{}, err
	}

	uploadURL, err := s.uploadFile(ctx, payload.AssignmentID, payload.StudentID, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return dto.SubmissionResult{}, err
	}

	extracted := s.extractor.Extract(file)

	submittedAt := s.now()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    payload.StudentID,
		Title:        assignment.Title,
		Instructions: assignment.Instructions,
		MaxPoints:    assignment.Points,
		FileURL:      uploadURL,
		FileName:     file.Filename,
		FileType:     extracted.MimeType,
		SubmittedAt:  submittedAt,
		Status:       string(state),
		Version:      1,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The blob was stored before the record write failed; remove it so
		// aborted attempts do not accumulate orphans.
		if deleteErr := s.storage.Delete(ctx, uploadURL); deleteErr != nil {
			s.logger.Warn().Err(deleteErr).Str("url", uploadURL).Msg("failed to clean up blob after persistence failure")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionResult{}, err
	}

	warning := s.gradeSubmission(ctx, &submission, extracted)

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResult{}, err
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Str("status", created.Status).
		Msg("submission created")

	return dto.SubmissionResult{Submission: dto.NewSubmissionResponse(created), Warning: warning}, nil
}

func (s *submissionService) Resubmit(ctx context.Context, id uint, payload dto.ResubmitRequest, file *multipart.FileHeader) (dto.SubmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "submission.resubmit", trace.WithAttributes(
		attribute.Int64("submission.id", int64(id)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResult{}, err
	}

	if file == nil {
		return dto.SubmissionResult{}, fmt.Errorf("submission file is required")
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResult{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResult{}, err
	}

	if submission.StudentID != payload.StudentID {
		return dto.SubmissionResult{}, ErrNotSubmissionOwner
	}

	currentState := models.StateOf(&submission)
	if currentState == models.SubmissionStateGraded && !payload.ConfirmRegrade {
		return dto.SubmissionResult{}, ErrRegradeConfirmationRequired
	}

	state, err := models.NextSubmissionState(currentState, models.SubmissionEventResubmit)
	if err != nil {
		return dto.SubmissionResult{}, err
	}

	uploadURL, err := s.uploadFile(ctx, submission.AssignmentID, submission.StudentID, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return dto.SubmissionResult{}, err
	}

	extracted := s.extractor.Extract(file)
	previousURL := submission.FileURL

	submission.FileURL = uploadURL
	submission.FileName = file.Filename
	submission.FileType = extracted.MimeType
	submission.SubmittedAt = s.now()
	submission.Status = string(state)
	submission.Grade = nil
	submission.Feedback = ""
	submission.Suggestions = nil
	submission.GradedAt = nil

	if err := s.submissions.UpdateVersioned(ctx, &submission); err != nil {
		if deleteErr := s.storage.Delete(ctx, uploadURL); deleteErr != nil {
			s.logger.Warn().Err(deleteErr).Str("url", uploadURL).Msg("failed to clean up blob after update failure")
		}
		span.RecordError(err)
		return dto.SubmissionResult{}, err
	}

	// The old file is replaced; deletion failure is tolerated and only logged.
	if previousURL != "" && previousURL != uploadURL {
		if err := s.storage.Delete(ctx, previousURL); err != nil {
			s.logger.Warn().Err(err).Str("url", previousURL).Msg("failed to delete previous submission file")
		}
	}

	warning := s.gradeSubmission(ctx, &submission, extracted)

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResult{}, err
	}

	s.logger.Info().
		Uint("submission_id", updated.ID).
		Str("status", updated.Status).
		Msg("submission replaced")

	return dto.SubmissionResult{Submission: dto.NewSubmissionResponse(updated), Warning: warning}, nil
}

// Remove deletes a submission through the student-facing path. Graded work is
// protected: an educator must use the administrative path instead.
func (s *submissionService) Remove(ctx context.Context, id, studentID uint) error {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if submission.StudentID != studentID {
		return ErrNotSubmissionOwner
	}

	if _, err := models.NextSubmissionState(models.StateOf(&submission), models.SubmissionEventRemove); err != nil {
		return ErrSubmissionGraded
	}

	return s.deleteSubmission(ctx, submission)
}

// AdminRemove deletes a submission regardless of grading state.
func (s *submissionService) AdminRemove(ctx context.Context, id uint) error {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	return s.deleteSubmission(ctx, submission)
}

func (s *submissionService) GetForAssignment(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) uploadFile(ctx context.Context, assignmentID, studentID uint, file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer reader.Close()

	storagePath := fmt.Sprintf("submissions/%d/%d/%d_%s", assignmentID, studentID, s.now().Unix(), file.Filename)

	url, err := s.storage.Upload(ctx, storagePath, reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return url, nil
}

// gradeSubmission runs the best-effort AI evaluation. It returns a warning
// string for degraded outcomes and never an error: grading failure must not
// undo a submission that is already persisted.
func (s *submissionService) gradeSubmission(ctx context.Context, submission *models.Submission, extracted ExtractedContent) string {
	ctx, span := s.tracer.Start(ctx, "submission.grade", trace.WithAttributes(
		attribute.Int64("submission.id", int64(submission.ID)),
	))
	defer span.End()

	outcome, err := s.grader.Grade(ctx, ai.GradeInput{
		AssignmentTitle: submission.Title,
		Instructions:    submission.Instructions,
		MaxPoints:       submission.MaxPoints,
		FileName:        submission.FileName,
		FileType:        submission.FileType,
		Content:         extracted.Text,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("grading request failed")
		span.RecordError(err)
		outcome = ai.Ungraded(err.Error())
	}

	if !outcome.IsGraded() {
		span.SetAttributes(attribute.String("grading.reason", outcome.Reason))
		s.notifyNeedsReview(ctx, *submission, outcome.Reason)
		return ManualReviewWarning
	}

	state, err := models.NextSubmissionState(models.StateOf(submission), models.SubmissionEventGrade)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("grade arrived in unexpected state")
		return ManualReviewWarning
	}

	grade := outcome.Graded.Grade
	gradedAt := s.now()
	submission.Grade = &grade
	submission.Feedback = outcome.Graded.Feedback
	submission.GradedAt = &gradedAt
	submission.Status = string(state)
	if err := submission.SetSuggestions(outcome.Graded.Suggestions); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to encode suggestions")
	}

	if err := s.submissions.UpdateVersioned(ctx, submission); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist grading outcome")
		span.RecordError(err)
		return ManualReviewWarning
	}

	span.SetAttributes(attribute.Float64("grading.grade", grade))
	s.notifyGraded(ctx, *submission)

	return ""
}

func (s *submissionService) deleteSubmission(ctx context.Context, submission models.Submission) error {
	if err := s.submissions.Delete(ctx, submission.ID); err != nil {
		return err
	}

	if submission.FileURL != "" {
		if err := s.storage.Delete(ctx, submission.FileURL); err != nil {
			s.logger.Warn().Err(err).Str("url", submission.FileURL).Msg("failed to delete submission file")
		}
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission removed")

	return nil
}

func (s *submissionService) notifyGraded(ctx context.Context, submission models.Submission) {
	if s.notifier == nil {
		return
	}
	s.notifier.SubmissionGraded(ctx, submission)
}

func (s *submissionService) notifyNeedsReview(ctx context.Context, submission models.Submission, reason string) {
	if s.notifier == nil {
		return
	}
	s.notifier.SubmissionNeedsReview(ctx, submission, reason)
}
