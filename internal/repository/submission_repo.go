package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// ErrVersionConflict indicates a versioned update lost the race against a
// concurrent writer; the caller should reload and retry or surface a
// conflict to the client.
var ErrVersionConflict = errors.New("submission was modified concurrently")

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Status       *string
}

// SubmissionRepository defines data operations for submissions. Create and
// Delete maintain the parent assignment's total_submissions counter with an
// atomic SQL increment so concurrent submissions never lose an update.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateVersioned(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	return r.List(ctx, SubmissionFilter{StudentID: &studentID})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// Create inserts the record and increments the parent assignment's submission
// counter inside one transaction.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}

		return tx.Model(&models.Assignment{}).
			Where("id = ?", submission.AssignmentID).
			UpdateColumn("total_submissions", gorm.Expr("total_submissions + ?", 1)).Error
	})
}

// UpdateVersioned saves the submission only when the stored version still
// matches the version the caller loaded, then bumps it. Resubmissions racing
// from two sessions therefore fail loudly instead of silently overwriting.
func (r *submissionRepository) UpdateVersioned(ctx context.Context, submission *models.Submission) error {
	expected := submission.Version
	submission.Version = expected + 1

	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", "assignment_id", "student_id", "Assignment", "Student").
		Updates(submission)
	if result.Error != nil {
		submission.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		submission.Version = expected
		return ErrVersionConflict
	}

	return nil
}

// Delete removes the record and decrements the parent assignment's counter.
// The graded-submission guard is enforced by the service layer; this method
// deletes unconditionally so the educator's administrative path can reuse it.
func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Submission{}, id).Error; err != nil {
			return err
		}

		return tx.Model(&models.Assignment{}).
			Where("id = ?", submission.AssignmentID).
			UpdateColumn("total_submissions", gorm.Expr("total_submissions - ?", 1)).Error
	})
}
