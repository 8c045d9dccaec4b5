package datagov

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

	"golang.org/x/sync/semaphore"
)

// Config holds data.gov.in client configuration
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxConcurrency int64
	RetryCount     int
	RetryDelay     time.Duration
	PageSize       int
}

// DefaultConfig returns default configuration
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:        "https://data.gov.in/api/3/action/datastore_search",
		APIKey:         apiKey,
		Timeout:        30 * time.Second,
		MaxConcurrency: 4,
		RetryCount:     1,
		RetryDelay:     200 * time.Millisecond,
		PageSize:       2000,
	}
}

// Client fetches paginated resources from the data.gov.in datastore
type Client struct {
	config Config
	client *http.Client
	sem    *semaphore.Weighted
}

// NewClient creates a new client
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		sem: semaphore.NewWeighted(config.MaxConcurrency),
	}
}

// FetchAll pages through a resource until a short page signals the end,
// returning every record
func (c *Client) FetchAll(ctx context.Context, resourceID string) ([]Record, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("semaphore acquire: %w", err)
	}
	defer c.sem.Release(1)

	var records []Record
	offset := 0
	for {
		page, err := c.fetchPage(ctx, resourceID, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < c.config.PageSize {
			break
		}
		offset += c.config.PageSize
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no records returned for resource %s", resourceID)
	}
	return records, nil
}

// fetchPage executes a single page request with bounded retry
func (c *Client) fetchPage(ctx context.Context, resourceID string, offset int) ([]Record, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		page, err := c.executeQuery(ctx, resourceID, offset)
		if err == nil {
			return page, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("page fetch failed after %d attempts: %w", c.config.RetryCount+1, lastErr)
}

func (c *Client) executeQuery(ctx context.Context, resourceID string, offset int) ([]Record, error) {
	params := url.Values{}
	params.Add("resource_id", resourceID)
	params.Add("api-key", c.config.APIKey)
	params.Add("limit", strconv.Itoa(c.config.PageSize))
	params.Add("offset", strconv.Itoa(offset))

	fullURL := strings.TrimSuffix(c.config.BaseURL, "/") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return result.Result.Records, nil
}
