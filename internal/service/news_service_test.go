package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/pkg/news"
)

func TestNewsSearchCachesUpstreamResponses(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 1,
			"articles": [{
				"source": {"name": "EdWeek"},
				"title": "Classrooms adopt AI tutors",
				"description": "A look at AI in schools",
				"url": "https://example.com/story",
				"urlToImage": "https://example.com/story.jpg",
				"publishedAt": "2026-08-01T10:00:00Z"
			}]
		}`))
	}))
	defer server.Close()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	client, err := news.NewClient(news.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
		Logger:  testLogger(),
	})
	require.NoError(t, err)

	svc := NewNewsService(client, redisClient, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	ctx := context.Background()
	query := dto.NewsQuery{Query: "education"}

	first, err := svc.Search(ctx, query)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, "Classrooms adopt AI tutors", first[0].Title)
	require.Equal(t, "EdWeek", first[0].Source)

	second, err := svc.Search(ctx, query)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, calls.Load(), "second identical search must be served from cache")

	// A different query misses the cache.
	_, err = svc.Search(ctx, dto.NewsQuery{Query: "science"})
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestNewsSearchRejectsShortQuery(t *testing.T) {
	client, err := news.NewClient(news.Config{BaseURL: "http://localhost:0", APIKey: "k", Logger: testLogger()})
	require.NoError(t, err)

	svc := NewNewsService(client, nil, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	_, err = svc.Search(context.Background(), dto.NewsQuery{Query: "x"})
	require.Error(t, err)
}

func TestNewsSearchPropagatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer server.Close()

	client, err := news.NewClient(news.Config{BaseURL: server.URL, APIKey: "bad", Logger: testLogger()})
	require.NoError(t, err)
	svc := NewNewsService(client, nil, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	_, err = svc.Search(context.Background(), dto.NewsQuery{Query: "education"})
	require.Error(t, err)
}
