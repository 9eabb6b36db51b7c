package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vkravets/newspulse/internal/adapters/config"
)

// AnalyzeRequest asks the sentiment service for document sentiment,
// optional keyword-targeted sentiment, and extracted keyword sentiments.
type AnalyzeRequest struct {
	URL      string   `json:"url"`
	Features features `json:"features"`
}

type features struct {
	Sentiment sentimentOptions `json:"sentiment"`
	Keywords  keywordsOptions  `json:"keywords"`
}

type sentimentOptions struct {
	Document bool     `json:"document"`
	Targets  []string `json:"targets,omitempty"`
}

type keywordsOptions struct {
	Sentiment bool `json:"sentiment"`
	Emotion   bool `json:"emotion"`
	Limit     int  `json:"limit"`
}

// AnalyzeResponse mirrors the provider payload. Every branch is optional;
// score pointers stay nil when the provider omits the field so that a
// missing score is never mistaken for a zero score.
type AnalyzeResponse struct {
	Sentiment *struct {
		Document *struct {
			Score *float64 `json:"score"`
			Label string   `json:"label"`
		} `json:"document"`
		Targets []struct {
			Text  string   `json:"text"`
			Score *float64 `json:"score"`
			Label string   `json:"label"`
		} `json:"targets"`
	} `json:"sentiment"`
	Keywords []struct {
		Text      string `json:"text"`
		Sentiment *struct {
			Score *float64 `json:"score"`
		} `json:"sentiment"`
	} `json:"keywords"`
}

// Client calls an IBM NLU style sentiment analysis service
type Client struct {
	baseURL      string
	apiKey       string
	version      string
	keywordLimit int
	client       *http.Client
}

// NewClient creates new sentiment provider client
func NewClient(cfg *config.NLUConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		version:      cfg.Version,
		keywordLimit: cfg.KeywordLimit,
		client:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Analyze requests sentiment for the document at docURL, targeted at the
// given keyword when non-empty
func (c *Client) Analyze(ctx context.Context, docURL, keyword string) (*AnalyzeResponse, error) {
	reqBody := AnalyzeRequest{
		URL: docURL,
		Features: features{
			Sentiment: sentimentOptions{Document: true},
			Keywords:  keywordsOptions{Sentiment: true, Emotion: false, Limit: c.keywordLimit},
		},
	}
	if keyword != "" {
		reqBody.Features.Sentiment.Targets = []string{keyword}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/analyze?version=%s", c.baseURL, c.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
