package jobsearch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	noResultsMarker = "hasn't returned any results"
)

type searchResponse struct {
	Error       string           `json:"error"`
	JobsResults []map[string]any `json:"jobs_results"`
}

func (c *Client) searchOnce(ctx context.Context, q Query) ([]Posting, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.URL.RawQuery = c.buildParams(q).Encode()

	var response searchResponse
	if err := c.getJSON(req, &response); err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, err
	}

	if response.Error != "" {
		if strings.Contains(response.Error, noResultsMarker) {
			return []Posting{}, nil
		}
		return nil, fmt.Errorf("serpapi: %s", response.Error)
	}

	postings, err := decodePostings(response.JobsResults, q.Count)
	if err != nil {
		return nil, fmt.Errorf("decode jobs_results: %w", err)
	}

	return postings, nil
}

func (c *Client) getJSON(req *http.Request, target any) error {
	c.logger.Debug("make request", zap.String("url", redact(req.URL.String(), c.apiKey)))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("bad status: %s: %w", resp.Status, ai.ErrQuotaExhausted)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("bad status: %s: %w", resp.Status, ai.ErrBackendInternal)
	case resp.StatusCode != http.StatusOK:
		// SerpAPI reports some failures as JSON with a non-200 status.
		var response searchResponse
		if json.Unmarshal(data, &response) == nil && response.Error != "" {
			if strings.Contains(response.Error, noResultsMarker) {
				return json.Unmarshal(data, target)
			}
			return fmt.Errorf("bad status: %s: %s", resp.Status, response.Error)
		}
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return json.Unmarshal(data, target)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
