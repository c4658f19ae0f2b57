package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/config"
	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/handler"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
	"github.com/spark-iq/spark-iq-api/internal/router"
	"github.com/spark-iq/spark-iq-api/internal/service"
	"github.com/spark-iq/spark-iq-api/pkg/ai"
)

type handlerStorageStub struct {
	deletes []string
}

func (s *handlerStorageStub) Upload(_ context.Context, path string, reader io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, reader)
	return "https://cdn.test/" + path, nil
}

func (s *handlerStorageStub) Delete(_ context.Context, url string) error {
	s.deletes = append(s.deletes, url)
	return nil
}

type handlerGraderStub struct {
	outcome ai.Outcome
	err     error
}

func (g *handlerGraderStub) Grade(_ context.Context, _ ai.GradeInput) (ai.Outcome, error) {
	if g.err != nil {
		return ai.Outcome{}, g.err
	}
	return g.outcome, nil
}

type handlerNotifierStub struct{}

func (handlerNotifierStub) SubmissionGraded(context.Context, models.Submission)               {}
func (handlerNotifierStub) SubmissionNeedsReview(context.Context, models.Submission, string) {}

// headerAuth stands in for the JWT middleware so one app can serve requests
// from different identities.
func headerAuth(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func openHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}))

	return db
}

func setupSubmissionApp(t *testing.T, grader ai.Grader) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := openHandlerDB(t)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		validate,
		&handlerStorageStub{},
		service.NewContentExtractor(logger),
		grader,
		handlerNotifierStub{},
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, nil, logger),
		JWTMiddleware:     headerAuth,
	})

	return app, db
}

func seedPublishedAssignment(t *testing.T, db *gorm.DB) (models.User, models.Assignment) {
	t.Helper()

	student := models.User{Name: "Dana", Email: "dana@sparkiq.test", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	educator := models.User{Name: "Prof Lee", Email: "lee@sparkiq.test", Role: models.RoleEducator}
	require.NoError(t, db.Create(&educator).Error)

	assignment := models.Assignment{
		EducatorID:   educator.ID,
		Title:        "Climate Essay",
		Instructions: "Discuss mitigation strategies in 500 words.",
		Points:       100,
		DueDate:      time.Now().Add(48 * time.Hour),
		Status:       models.AssignmentStatusPublished,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return student, assignment
}

func submissionRequest(t *testing.T, method, path string, assignmentID uint, confirmRegrade bool) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if assignmentID != 0 {
		require.NoError(t, writer.WriteField("assignment_id", strconv.FormatUint(uint64(assignmentID), 10)))
	}
	if confirmRegrade {
		require.NoError(t, writer.WriteField("confirm_regrade", "true"))
	}
	part, err := writer.CreateFormFile("file", "essay.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Mitigation requires both policy and engineering."))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func asUser(req *http.Request, id uint, role string) *http.Request {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(id), 10))
	req.Header.Set("X-Test-Role", role)
	return req
}

func TestSubmitReturnsCreatedWithGrade(t *testing.T) {
	grade := 88.0
	app, db := setupSubmissionApp(t, &handlerGraderStub{outcome: ai.Outcome{
		Graded: &ai.Evaluation{Grade: grade, Feedback: "Well argued.", Suggestions: []string{"cite sources"}},
	}})
	student, assignment := seedPublishedAssignment(t, db)

	req := asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
		Warning string                 `json:"warning"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "submission created", body.Message)
	require.Empty(t, body.Warning)
	require.NotZero(t, body.Data.ID)
	require.Equal(t, assignment.ID, body.Data.AssignmentID)
	require.Equal(t, "Climate Essay", body.Data.Title)
	require.Equal(t, string(models.SubmissionStateGraded), string(body.Data.State))
	require.NotNil(t, body.Data.Grade)
	require.InDelta(t, grade, *body.Data.Grade, 0.001)
}

func TestSubmitWithoutFileIsRejected(t *testing.T) {
	app, db := setupSubmissionApp(t, &handlerGraderStub{})
	student, assignment := seedPublishedAssignment(t, db)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("assignment_id", strconv.FormatUint(uint64(assignment.ID), 10)))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(asUser(req, student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitDuplicateConflicts(t *testing.T) {
	app, db := setupSubmissionApp(t, &handlerGraderStub{outcome: ai.Ungraded("no result")})
	student, assignment := seedPublishedAssignment(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmitGraderFailureCarriesWarning(t *testing.T) {
	app, db := setupSubmissionApp(t, &handlerGraderStub{err: errors.New("model endpoint down")})
	student, assignment := seedPublishedAssignment(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Warning string                 `json:"warning"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.NotEmpty(t, body.Warning)
	require.Equal(t, string(models.SubmissionStateSubmitted), string(body.Data.State))
	require.Nil(t, body.Data.Grade)
}

func TestResubmitGradedNeedsConfirmation(t *testing.T) {
	app, db := setupSubmissionApp(t, &handlerGraderStub{outcome: ai.Outcome{
		Graded: &ai.Evaluation{Grade: 70, Feedback: "Decent start."},
	}})
	student, assignment := seedPublishedAssignment(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	path := "/api/v1/submissions/" + strconv.FormatUint(uint64(created.Data.ID), 10)

	resp, err = app.Test(asUser(submissionRequest(t, "PUT", path, 0, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(asUser(submissionRequest(t, "PUT", path, 0, true), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var replaced struct {
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &replaced)
	require.Equal(t, "submission replaced", replaced.Message)
	require.Equal(t, created.Data.ID, replaced.Data.ID)
}

func TestEducatorRemoveEnforcesRole(t *testing.T) {
	app, db := setupSubmissionApp(t, &handlerGraderStub{outcome: ai.Outcome{
		Graded: &ai.Evaluation{Grade: 90, Feedback: "Strong work."},
	}})
	student, assignment := seedPublishedAssignment(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "POST", "/api/v1/submissions", assignment.ID, false), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	path := "/api/v1/educator/submissions/" + strconv.FormatUint(uint64(created.Data.ID), 10)

	resp, err = app.Test(asUser(httptest.NewRequest("DELETE", path, nil), student.ID, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(asUser(httptest.NewRequest("DELETE", path, nil), 99, models.RoleEducator))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}
