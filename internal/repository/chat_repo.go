package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

// ChatRepository persists chat room history.
type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a chat history repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByRoom returns the newest messages first.
func (r *chatRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
