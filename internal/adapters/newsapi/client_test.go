package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vkravets/newspulse/internal/adapters/config"
	"github.com/vkravets/newspulse/pkg/logger"
)

// setupTest initializes logger for tests
func setupTest(t *testing.T) {
	t.Helper()
	if logger.Log == nil {
		if err := logger.Init("error", ""); err != nil {
			t.Fatalf("Failed to initialize logger: %v", err)
		}
	}
}

func testClient(baseURL string) *Client {
	return NewClient(&config.NewsAPIConfig{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Sources:  []string{"cnn", "bbc-news"},
		Language: "en",
		PageSize: 100,
		Timeout:  5 * time.Second,
	})
}

func TestTopHeadlines(t *testing.T) {
	setupTest(t)

	var gotPath string
	var gotQuery map[string][]string
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAPIKey = r.Header.Get("X-Api-Key")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"id": "cnn", "name": "CNN"},
					"title": "Markets rally",
					"url": "https://example.com/story",
					"publishedAt": "2026-03-14T09:30:00Z",
					"content": "snippet"
				}
			]
		}`))
	}))
	defer server.Close()

	articles, err := testClient(server.URL).TopHeadlines(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("TopHeadlines failed: %v", err)
	}

	if gotPath != "/top-headlines" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("api key header = %q", gotAPIKey)
	}
	for param, want := range map[string]string{
		"sources":  "cnn,bbc-news",
		"language": "en",
		"pageSize": "100",
		"q":        "bitcoin",
	} {
		if got := gotQuery[param]; len(got) != 1 || got[0] != want {
			t.Errorf("param %s = %v, want %q", param, got, want)
		}
	}
	if len(gotQuery["from"]) != 0 {
		t.Errorf("headlines request must not carry a from bound")
	}

	if len(articles) != 1 || articles[0].Title != "Markets rally" || articles[0].Source.Name != "CNN" {
		t.Errorf("unexpected articles: %+v", articles)
	}
}

func TestEverythingCarriesFromDate(t *testing.T) {
	setupTest(t)

	var gotPath, gotFrom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer server.Close()

	from := time.Date(2026, 2, 12, 18, 45, 0, 0, time.UTC)
	if _, err := testClient(server.URL).Everything(context.Background(), "bitcoin", from); err != nil {
		t.Fatalf("Everything failed: %v", err)
	}

	if gotPath != "/everything" {
		t.Errorf("path = %q", gotPath)
	}
	if gotFrom != "2026-02-12" {
		t.Errorf("from = %q, want date only", gotFrom)
	}
}

func TestErrorStatusRejected(t *testing.T) {
	setupTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "apiKeyInvalid"}`))
	}))
	defer server.Close()

	if _, err := testClient(server.URL).TopHeadlines(context.Background(), "bitcoin"); err == nil {
		t.Errorf("status=error body must be rejected")
	}
}

func TestHTTPErrorRejected(t *testing.T) {
	setupTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).TopHeadlines(context.Background(), "bitcoin"); err == nil {
		t.Errorf("non-200 response must be rejected")
	}
}
