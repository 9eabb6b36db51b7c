package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/config"
	"github.com/vkravets/newspulse/pkg/logger"
)

// RawArticle is one untrusted entry from the news source. Any required
// field may be missing; the fetcher decides what to discard.
type RawArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type response struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []RawArticle `json:"articles"`
}

// Client calls a newsapi.org style news source service
type Client struct {
	baseURL  string
	apiKey   string
	sources  string
	language string
	pageSize int
	client   *http.Client
}

// NewClient creates new news source client
func NewClient(cfg *config.NewsAPIConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		sources:  strings.Join(cfg.Sources, ","),
		language: cfg.Language,
		pageSize: cfg.PageSize,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// TopHeadlines fetches the latest headlines for the keyword (bounded page)
func (c *Client) TopHeadlines(ctx context.Context, keyword string) ([]RawArticle, error) {
	return c.get(ctx, "/top-headlines", keyword, "")
}

// Everything fetches all results for the keyword published on/after from
func (c *Client) Everything(ctx context.Context, keyword string, from time.Time) ([]RawArticle, error) {
	return c.get(ctx, "/everything", keyword, from.Format("2006-01-02"))
}

func (c *Client) get(ctx context.Context, endpoint, keyword, from string) ([]RawArticle, error) {
	params := url.Values{}
	params.Set("sources", c.sources)
	params.Set("language", c.language)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	if keyword != "" {
		params.Set("q", keyword)
	}
	if from != "" {
		params.Set("from", from)
	}

	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "ok" {
		return nil, fmt.Errorf("news source error: %s", result.Message)
	}

	logger.Debug("fetched news source results",
		zap.String("endpoint", endpoint),
		zap.String("keyword", keyword),
		zap.Int("count", len(result.Articles)),
	)

	return result.Articles, nil
}
