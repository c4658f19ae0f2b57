package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

func TestSubmissionRepositoryCreateIncrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	educator := createEducator(t, db, "teacher@sparkiq.test")
	student := createStudent(t, db, "student@sparkiq.test")

	assignment := models.Assignment{
		EducatorID:   educator.ID,
		Title:        "Climate Essay",
		Instructions: "Write 500 words on climate change",
		Points:       100,
		DueDate:      time.Now().Add(48 * time.Hour),
		Status:       models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Title:        assignment.Title,
		Instructions: assignment.Instructions,
		MaxPoints:    assignment.Points,
		FileURL:      "https://cdn.test/essay.txt",
		FileName:     "essay.txt",
		FileType:     "text/plain",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	var reloaded models.Assignment
	require.NoError(t, db.First(&reloaded, assignment.ID).Error)
	require.Equal(t, 1, reloaded.TotalSubmissions)
}

func TestSubmissionRepositoryEnforcesOnePerStudentAndAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	educator := createEducator(t, db, "teacher@sparkiq.test")
	student := createStudent(t, db, "student@sparkiq.test")

	assignment := models.Assignment{
		EducatorID: educator.ID,
		Title:      "Lab Report",
		Points:     100,
		DueDate:    time.Now().Add(time.Hour),
		Status:     models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	first := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Title:        assignment.Title,
		MaxPoints:    100,
		FileURL:      "https://cdn.test/one.txt",
		FileName:     "one.txt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, repo.Create(context.Background(), &first))

	duplicate := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Title:        assignment.Title,
		MaxPoints:    100,
		FileURL:      "https://cdn.test/two.txt",
		FileName:     "two.txt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.Error(t, repo.Create(context.Background(), &duplicate), "unique index must reject a second submission for the same pair")
}

func TestSubmissionRepositoryVersionedUpdateDetectsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	educator := createEducator(t, db, "teacher@sparkiq.test")
	student := createStudent(t, db, "student@sparkiq.test")

	assignment := models.Assignment{
		EducatorID: educator.ID,
		Title:      "History Quiz",
		Points:     50,
		DueDate:    time.Now().Add(time.Hour),
		Status:     models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Title:        assignment.Title,
		MaxPoints:    50,
		FileURL:      "https://cdn.test/quiz.txt",
		FileName:     "quiz.txt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	sessionA, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	sessionB, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)

	sessionA.FileURL = "https://cdn.test/quiz_v2.txt"
	require.NoError(t, repo.UpdateVersioned(context.Background(), &sessionA))

	sessionB.FileURL = "https://cdn.test/quiz_v3.txt"
	require.ErrorIs(t, repo.UpdateVersioned(context.Background(), &sessionB), ErrVersionConflict)

	current, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/quiz_v2.txt", current.FileURL)
	require.Equal(t, 2, current.Version)
}

func TestSubmissionRepositoryDeleteDecrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	educator := createEducator(t, db, "teacher@sparkiq.test")
	student := createStudent(t, db, "student@sparkiq.test")

	assignment := models.Assignment{
		EducatorID: educator.ID,
		Title:      "Poetry Reading",
		Points:     100,
		DueDate:    time.Now().Add(time.Hour),
		Status:     models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Title:        assignment.Title,
		MaxPoints:    100,
		FileURL:      "https://cdn.test/poem.txt",
		FileName:     "poem.txt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))
	require.NoError(t, repo.Delete(context.Background(), submission.ID))

	var reloaded models.Assignment
	require.NoError(t, db.First(&reloaded, assignment.ID).Error)
	require.Equal(t, 0, reloaded.TotalSubmissions)
}

func TestSubmissionRepositoryListByStudentOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	educator := createEducator(t, db, "teacher@sparkiq.test")
	student := createStudent(t, db, "student@sparkiq.test")

	older := models.Assignment{EducatorID: educator.ID, Title: "First", Points: 100, DueDate: time.Now().Add(time.Hour), Status: models.AssignmentStatusPublished}
	newer := models.Assignment{EducatorID: educator.ID, Title: "Second", Points: 100, DueDate: time.Now().Add(2 * time.Hour), Status: models.AssignmentStatusPublished}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	first := models.Submission{
		AssignmentID: older.ID, StudentID: student.ID, Title: older.Title, MaxPoints: 100,
		FileURL: "https://cdn.test/a.txt", FileName: "a.txt",
		SubmittedAt: time.Now().Add(-2 * time.Hour), Status: models.SubmissionStatusSubmitted, Version: 1,
	}
	second := models.Submission{
		AssignmentID: newer.ID, StudentID: student.ID, Title: newer.Title, MaxPoints: 100,
		FileURL: "https://cdn.test/b.txt", FileName: "b.txt",
		SubmittedAt: time.Now().Add(-time.Hour), Status: models.SubmissionStatusSubmitted, Version: 1,
	}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	submissions, err := repo.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, submissions, 2)
	require.Equal(t, second.ID, submissions[0].ID, "most recent submission must come first")
}
