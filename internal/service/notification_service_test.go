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

func setupNotificationService(t *testing.T) (NotificationService, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		nil,
		"",
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)

	return svc, db
}

func TestNotificationPublishPersistsAndDelivers(t *testing.T) {
	svc, _ := setupNotificationService(t)
	ctx := context.Background()

	stream, cleanup := svc.Subscribe(7)
	defer cleanup()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID: 7,
		Kind:   models.NotificationKindGraded,
		Title:  "Your submission has been graded",
		Body:   "Essay One was graded 85.0 out of 100.",
	})
	require.NoError(t, err)
	require.NotZero(t, published.ID)
	require.False(t, published.Read)

	select {
	case delivered := <-stream:
		require.Equal(t, published.ID, delivered.ID)
		require.Equal(t, models.NotificationKindGraded, delivered.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected notification delivery on the subscription channel")
	}

	listed, err := svc.List(ctx, 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestNotificationPublishStripsMarkup(t *testing.T) {
	svc, _ := setupNotificationService(t)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID: 3,
		Kind:   "announcement",
		Title:  `<script>alert("x")</script>Welcome back`,
		Body:   `<b>Bold</b> body`,
	})
	require.NoError(t, err)
	require.Equal(t, "Welcome back", published.Title)
	require.NotContains(t, published.Body, "<b>")
}

func TestNotificationPublishRejectsEmptyTitle(t *testing.T) {
	svc, _ := setupNotificationService(t)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID: 3,
		Kind:   "announcement",
		Title:  `<script>only markup</script>`,
	})
	require.Error(t, err)
}

func TestNotificationMarkRead(t *testing.T) {
	svc, _ := setupNotificationService(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID: 5,
		Kind:   models.NotificationKindManualReview,
		Title:  "Your submission awaits manual review",
	})
	require.NoError(t, err)

	read, err := svc.MarkRead(ctx, published.ID, 5)
	require.NoError(t, err)
	require.True(t, read.Read)

	// Another user cannot mark someone else's notification.
	_, err = svc.MarkRead(ctx, published.ID, 6)
	require.Error(t, err)
}

func TestNotificationGradingHooks(t *testing.T) {
	svc, db := setupNotificationService(t)
	ctx := context.Background()

	grade := 92.0
	submission := models.Submission{
		StudentID: 11,
		Title:     "Final Project",
		MaxPoints: 100,
		Grade:     &grade,
	}
	submission.ID = 42

	svc.SubmissionGraded(ctx, submission)
	svc.SubmissionNeedsReview(ctx, submission, "response is not valid JSON")

	var notifications []models.Notification
	require.NoError(t, db.Order("id ASC").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	require.Equal(t, models.NotificationKindGraded, notifications[0].Kind)
	require.Contains(t, notifications[0].Body, "92.0")
	require.Equal(t, models.NotificationKindManualReview, notifications[1].Kind)
	require.Contains(t, notifications[1].Body, "did not complete")
}

func TestNotificationSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	svc, _ := setupNotificationService(t)
	ctx := context.Background()

	_, cleanup := svc.Subscribe(9)
	defer cleanup()

	// Fill the buffered channel past capacity without draining it.
	for i := 0; i < notificationBufferSize+5; i++ {
		_, err := svc.Publish(ctx, dto.NotificationCreateRequest{
			UserID: 9,
			Kind:   "announcement",
			Title:  fmt.Sprintf("Message %d", i),
		})
		require.NoError(t, err)
	}
}
