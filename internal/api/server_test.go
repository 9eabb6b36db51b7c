package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vkravets/newspulse/internal/keywords"
	"github.com/vkravets/newspulse/internal/trends"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
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

type fakeKeywordStore struct {
	nextID   int64
	keywords map[string]*models.Keyword
	subs     map[int64]int
}

func newFakeKeywordStore() *fakeKeywordStore {
	return &fakeKeywordStore{
		keywords: make(map[string]*models.Keyword),
		subs:     make(map[int64]int),
	}
}

func (s *fakeKeywordStore) GetByKeyword(ctx context.Context, keyword string) (*models.Keyword, error) {
	return s.keywords[keyword], nil
}

func (s *fakeKeywordStore) Create(ctx context.Context, keyword string, refreshHours int) (*models.Keyword, error) {
	s.nextID++
	kw := &models.Keyword{ID: s.nextID, Keyword: keyword, Active: true, RefreshHours: refreshHours}
	s.keywords[keyword] = kw
	return kw, nil
}

func (s *fakeKeywordStore) Delete(ctx context.Context, id int64) error {
	for keyword, kw := range s.keywords {
		if kw.ID == id {
			delete(s.keywords, keyword)
		}
	}
	return nil
}

func (s *fakeKeywordStore) AddSubscription(ctx context.Context, userID, keywordID int64) error {
	s.subs[keywordID]++
	return nil
}

func (s *fakeKeywordStore) RemoveSubscription(ctx context.Context, userID, keywordID int64) error {
	s.subs[keywordID]--
	return nil
}

func (s *fakeKeywordStore) SubscriberCount(ctx context.Context, keywordID int64) (int, error) {
	return s.subs[keywordID], nil
}

type fakeBackfiller struct {
	enqueued []string
}

func (f *fakeBackfiller) EnqueueScrapeHistoric(ctx context.Context, keyword string) error {
	f.enqueued = append(f.enqueued, keyword)
	return nil
}

type fakeArticleSource struct {
	articles []*models.Article
}

func (f *fakeArticleSource) ListByHeadKeyword(ctx context.Context, keyword string, since *time.Time) ([]*models.Article, error) {
	return f.articles, nil
}

func testServer(articles []*models.Article) (*httptest.Server, *fakeBackfiller) {
	backfiller := &fakeBackfiller{}
	kwService := keywords.NewService(newFakeKeywordStore(), backfiller, 2)
	trService := trends.NewService(&fakeArticleSource{articles: articles})

	s := NewServer("0", kwService, trService)
	return httptest.NewServer(s.server.Handler), backfiller
}

func TestSubscribeEndpoint(t *testing.T) {
	setupTest(t)

	server, backfiller := testServer(nil)
	defer server.Close()

	body := bytes.NewBufferString(`{"user_id": 42, "keyword": "bitcoin"}`)
	resp, err := http.Post(server.URL+"/api/subscriptions", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var kw keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&kw); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if kw.Keyword != "bitcoin" || kw.RefreshHours != 2 {
		t.Errorf("unexpected response: %+v", kw)
	}
	if len(backfiller.enqueued) != 1 {
		t.Errorf("first subscription must dispatch the backfill")
	}
}

func TestSubscribeEndpointRejectsBadBody(t *testing.T) {
	setupTest(t)

	server, _ := testServer(nil)
	defer server.Close()

	for _, body := range []string{`not json`, `{}`, `{"user_id": 42}`, `{"keyword": "bitcoin"}`} {
		resp, err := http.Post(server.URL+"/api/subscriptions", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestUnsubscribeEndpoint(t *testing.T) {
	setupTest(t)

	server, _ := testServer(nil)
	defer server.Close()

	body := bytes.NewBufferString(`{"user_id": 42, "keyword": "bitcoin"}`)
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/subscriptions", body)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestTrendEndpoint(t *testing.T) {
	setupTest(t)

	score := 0.5
	report := models.NewReport("bitcoin", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	report.TargetScore = &score

	articles := []*models.Article{{
		PublishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Reports:     models.ReportHistory{report},
	}}

	server, _ := testServer(articles)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/keywords/bitcoin/trend")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var points []trendPointResponse
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(points) != 1 || points[0].Date != "2026-03-01" || points[0].Score != 0.5 {
		t.Errorf("unexpected trend: %+v", points)
	}
}

func TestTrendEndpointRejectsBadSince(t *testing.T) {
	setupTest(t)

	server, _ := testServer(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/keywords/bitcoin/trend?since=yesterday")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAverageEndpoint(t *testing.T) {
	setupTest(t)

	var articles []*models.Article
	for _, score := range []float64{0.2, 0.4, 0.6} {
		s := score
		report := models.NewReport("bitcoin", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
		report.TargetScore = &s
		articles = append(articles, &models.Article{
			PublishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Reports:     models.ReportHistory{report},
		})
	}

	server, _ := testServer(articles)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/keywords/bitcoin/average")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var avg averageResponse
	if err := json.NewDecoder(resp.Body).Decode(&avg); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if avg.Count != 3 || avg.Mean < 0.39 || avg.Mean > 0.41 {
		t.Errorf("unexpected average: %+v", avg)
	}
}
