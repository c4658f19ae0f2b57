package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
)

var meetingSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// MeetingService mints video meeting rooms for the client-side conferencing
// embed. All signaling happens between the browser and the conferencing
// provider; the server only generates collision-free room names.
type MeetingService interface {
	CreateRoom(ctx context.Context, payload dto.MeetingCreateRequest) (dto.MeetingResponse, error)
}

type meetingService struct {
	domain     string
	roomPrefix string
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewMeetingService constructs the meeting room service.
func NewMeetingService(domain, roomPrefix string, validate *validator.Validate, logger zerolog.Logger) MeetingService {
	if domain == "" {
		domain = "meet.jit.si"
	}
	if roomPrefix == "" {
		roomPrefix = "sparkiq"
	}

	return &meetingService{
		domain:     domain,
		roomPrefix: roomPrefix,
		validator:  validate,
		logger:     logger.With().Str("component", "meeting_service").Logger(),
	}
}

// CreateRoom derives a room name from the topic plus a random suffix so two
// meetings about the same topic never collide.
func (s *meetingService) CreateRoom(_ context.Context, payload dto.MeetingCreateRequest) (dto.MeetingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MeetingResponse{}, err
	}

	slug := meetingSlug(payload.Topic)
	suffix := strings.Split(uuid.NewString(), "-")[0]
	roomName := fmt.Sprintf("%s-%s-%s", s.roomPrefix, slug, suffix)

	s.logger.Info().Str("room_name", roomName).Msg("meeting room created")

	return dto.MeetingResponse{
		RoomName:    roomName,
		DisplayName: payload.DisplayName,
		Domain:      s.domain,
		JoinURL:     fmt.Sprintf("https://%s/%s", s.domain, roomName),
	}, nil
}

func meetingSlug(topic string) string {
	slug := meetingSlugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(topic)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 48 {
		slug = slug[:48]
	}
	if slug == "" {
		slug = "room"
	}
	return slug
}
