package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/pkg/news"
)

const newsCacheTTL = 10 * time.Minute

// NewsService serves the education news feed, caching upstream responses so
// repeated searches do not burn through the provider's request quota.
type NewsService interface {
	Search(ctx context.Context, query dto.NewsQuery) ([]dto.NewsArticleResponse, error)
}

type newsService struct {
	client    *news.Client
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewNewsService constructs the news feed service. The cache is optional.
func NewNewsService(client *news.Client, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) NewsService {
	return &newsService{
		client:    client,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "news_service").Logger(),
	}
}

func (s *newsService) Search(ctx context.Context, query dto.NewsQuery) ([]dto.NewsArticleResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	cacheKey := fmt.Sprintf("news:%s:%d:%d", query.Query, page, pageSize)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var articles []dto.NewsArticleResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &articles); unmarshalErr == nil {
				s.logger.Debug().Str("query", query.Query).Msg("news cache hit")
				return articles, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read news cache")
		}
	}

	upstream, err := s.client.Search(ctx, query.Query, page, pageSize)
	if err != nil {
		return nil, err
	}

	articles := dto.NewNewsArticleResponseSlice(upstream)

	if s.cache != nil {
		if payload, err := json.Marshal(articles); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, newsCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store news cache")
			}
		}
	}

	return articles, nil
}
