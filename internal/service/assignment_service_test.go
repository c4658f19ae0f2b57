package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
)

func setupAssignmentService(t *testing.T) (AssignmentService, *gorm.DB, models.User) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}))

	educator := models.User{Name: "Prof Chen", Email: "chen@sparkiq.test", Role: models.RoleEducator}
	require.NoError(t, db.Create(&educator).Error)

	svc := NewAssignmentService(repository.NewAssignmentRepository(db), validator.New(validator.WithRequiredStructEnabled()), testLogger())
	return svc, db, educator
}

func TestAssignmentCreateStartsAsDraft(t *testing.T) {
	svc, _, educator := setupAssignmentService(t)

	created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
		Title:        "Algebra Worksheet",
		Instructions: "Solve all ten equations",
		DueDate:      time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusDraft, created.Status)
	require.Equal(t, models.DefaultAssignmentPoints, created.Points, "points default when unset")

	_, err = svc.ListPublished(context.Background())
	require.NoError(t, err)

	published, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Empty(t, published, "drafts must not be visible to students")
}

func TestAssignmentPublishMakesItVisible(t *testing.T) {
	svc, _, educator := setupAssignmentService(t)

	created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
		Title:        "History Essay",
		Instructions: "Discuss the industrial revolution",
		Points:       50,
		DueDate:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	publishedResp, err := svc.Publish(context.Background(), created.ID, educator.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPublished, publishedResp.Status)

	listed, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)
}

func TestAssignmentUpdateRejectsOtherEducators(t *testing.T) {
	svc, db, educator := setupAssignmentService(t)

	other := models.User{Name: "Prof Okafor", Email: "okafor@sparkiq.test", Role: models.RoleEducator}
	require.NoError(t, db.Create(&other).Error)

	created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
		Title:        "Lab Report",
		Instructions: "Document your experiment",
		DueDate:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.Update(context.Background(), created.ID, other.ID, dto.AssignmentUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrAssignmentNotOwner)
}

func TestAssignmentUnpublishRefusedWithSubmissions(t *testing.T) {
	svc, db, educator := setupAssignmentService(t)

	created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
		Title:        "Reading Response",
		Instructions: "React to chapter three",
		DueDate:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), created.ID, educator.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", created.ID).
		Update("total_submissions", 3).Error)

	_, err = svc.Unpublish(context.Background(), created.ID, educator.ID)
	require.ErrorIs(t, err, ErrAssignmentHasSubmissions)
}

func TestAssignmentDeleteCascadesSubmissions(t *testing.T) {
	svc, db, educator := setupAssignmentService(t)

	student := models.User{Name: "Sam Park", Email: "sam@sparkiq.test", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
		Title:        "Poetry Analysis",
		Instructions: "Analyze the assigned poem",
		DueDate:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	submission := models.Submission{
		AssignmentID: created.ID,
		StudentID:    student.ID,
		Title:        created.Title,
		MaxPoints:    created.Points,
		FileURL:      "https://cdn.test/x",
		FileName:     "x.txt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
		Version:      1,
	}
	require.NoError(t, db.Create(&submission).Error)

	require.NoError(t, svc.Delete(context.Background(), created.ID, educator.ID))

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignmentListFiltersByStatus(t *testing.T) {
	svc, _, educator := setupAssignmentService(t)

	for i, title := range []string{"One", "Two", "Three"} {
		created, err := svc.Create(context.Background(), educator.ID, dto.AssignmentCreateRequest{
			Title:        title + " assignment",
			Instructions: "Do the work",
			DueDate:      time.Now().Add(time.Duration(i+1) * 24 * time.Hour),
		})
		require.NoError(t, err)
		if i < 2 {
			_, err = svc.Publish(context.Background(), created.ID, educator.ID)
			require.NoError(t, err)
		}
	}

	result, err := svc.List(context.Background(), dto.AssignmentListQuery{Status: models.AssignmentStatusPublished})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.Total)
	require.Len(t, result.Assignments, 2)
}
