package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClientSearchParsesArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/everything", r.URL.Path)
		require.Equal(t, "education technology", r.URL.Query().Get("q"))
		require.Equal(t, "10", r.URL.Query().Get("pageSize"))
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "EdTech Weekly"},
					"title": "AI tutors on the rise",
					"description": "Classrooms adopt AI assistants",
					"url": "https://news.example.com/ai-tutors",
					"urlToImage": "https://news.example.com/ai-tutors.jpg",
					"publishedAt": "2026-08-01T09:00:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "secret", Logger: zerolog.Nop()})
	require.NoError(t, err)

	articles, err := client.Search(context.Background(), "education technology", 1, 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "AI tutors on the rise", articles[0].Title)
	require.Equal(t, "EdTech Weekly", articles[0].Source)
}

func TestClientSearchSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKeyInvalid"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "bad", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "anything", 1, 10)
	require.ErrorContains(t, err, "apiKeyInvalid")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://newsapi.example.com"})
	require.Error(t, err)
}
