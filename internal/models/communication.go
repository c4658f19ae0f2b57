package models

import "time"

// ChatMessage represents a single message exchanged inside a chat room.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"size:128;index;not null" json:"room_id"`
	SenderID   uint      `gorm:"index;not null" json:"sender_id"`
	SenderRole string    `gorm:"size:16" json:"sender_role"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Notification represents a message targeted to a specific user, such as a
// grading result becoming available.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Kind      string    `gorm:"size:64" json:"kind"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// NotificationKindGraded announces an automatic grading result.
	NotificationKindGraded = "submission.graded"
	// NotificationKindManualReview announces that automatic grading failed
	// and an educator must review the submission by hand.
	NotificationKindManualReview = "submission.manual_review"
)
