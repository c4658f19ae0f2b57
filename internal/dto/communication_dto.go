package dto

import (
	"time"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// ChatMessageRequest is the inbound websocket payload.
type ChatMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// ChatMessageResponse is broadcast to room subscribers and returned from the
// history endpoint.
type ChatMessageResponse struct {
	ID         uint      `json:"id"`
	RoomID     string    `json:"room_id"`
	SenderID   uint      `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// ChatHistoryQuery filters the history endpoint.
type ChatHistoryQuery struct {
	RoomID string `query:"room_id" validate:"required,min=1,max=128"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=200"`
}

// NewChatMessageResponse converts a chat message model into a DTO.
func NewChatMessageResponse(model models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         model.ID,
		RoomID:     model.RoomID,
		SenderID:   model.SenderID,
		SenderRole: model.SenderRole,
		Body:       model.Body,
		SentAt:     model.CreatedAt,
	}
}

// NotificationCreateRequest publishes a notification to one user.
type NotificationCreateRequest struct {
	UserID uint   `json:"user_id" validate:"required,gt=0"`
	Kind   string `json:"kind" validate:"required,min=1,max=64"`
	Title  string `json:"title" validate:"required,min=1,max=255"`
	Body   string `json:"body" validate:"max=4000"`
}

// NotificationResponse serializes a stored notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Kind:      model.Kind,
		Title:     model.Title,
		Body:      model.Body,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts notification models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}

	return responses
}
