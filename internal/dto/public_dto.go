package dto

import (
	"time"

	"github.com/spark-iq/spark-iq-api/pkg/news"
)

// NewsQuery describes the keyword search against the news aggregation API.
type NewsQuery struct {
	Query    string `query:"q" validate:"required,min=2,max=200"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// NewsArticleResponse is one story in the education news feed.
type NewsArticleResponse struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
}

// NewNewsArticleResponseSlice converts client articles into DTOs.
func NewNewsArticleResponseSlice(articles []news.Article) []NewsArticleResponse {
	responses := make([]NewsArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, NewsArticleResponse{
			Title:       article.Title,
			Description: article.Description,
			URL:         article.URL,
			Source:      article.Source,
			ImageURL:    article.ImageURL,
			PublishedAt: article.PublishedAt,
		})
	}

	return responses
}

// MeetingCreateRequest asks for a video meeting room.
type MeetingCreateRequest struct {
	Topic       string `json:"topic" validate:"required,min=2,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=128"`
}

// MeetingResponse carries everything the client-side conferencing embed
// needs; the server performs no signaling of its own.
type MeetingResponse struct {
	RoomName    string `json:"room_name"`
	DisplayName string `json:"display_name"`
	Domain      string `json:"domain"`
	JoinURL     string `json:"join_url"`
}
