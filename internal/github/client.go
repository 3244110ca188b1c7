package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const maxResponseSize = 10 * 1024 * 1024

// NewClient creates a client for owner/repo.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		BackOff: defaultBackOff,
		Limiter: rate.NewLimiter(RequestsPerSecond, RequestBurst),
	}
}

// WithHTTPClient returns a copy of c using httpClient.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	cp := *c
	cp.HTTPClient = httpClient
	return &cp
}

// WithBaseURL returns a copy of c using baseURL (GitHub Enterprise or tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.BaseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// WithBackOff returns a copy of c using newBackOff as its retry policy.
func (c *Client) WithBackOff(newBackOff func() backoff.BackOff) *Client {
	cp := *c
	cp.BackOff = newBackOff
	return &cp
}

// WithRateLimit returns a copy of c pacing requests at rps with the given
// burst. A non-positive rps disables pacing.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	cp := *c
	if rps <= 0 {
		cp.Limiter = nil
	} else {
		cp.Limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
	return &cp
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = RetryDelay
	bo.MaxElapsedTime = 30 * time.Second
	return bo
}

// Post adds a comment to the issue thread.
func (c *Client) Post(ctx context.Context, thread int64, message string) error {
	urlStr := c.buildURL(fmt.Sprintf("/repos/%s/issues/%d/comments", c.repoPath(), thread), nil)
	_, _, err := c.doRequest(ctx, "post comment", http.MethodPost, urlStr, map[string]string{"body": message})
	return err
}

// FindThread returns the oldest issue whose title carries marker.
// Pull requests are skipped.
func (c *Client) FindThread(ctx context.Context, marker string) (int64, bool, error) {
	for page := 1; page <= MaxPages; page++ {
		params := map[string]string{
			"state":     "all",
			"sort":      "created",
			"direction": "asc",
			"per_page":  strconv.Itoa(MaxPageSize),
			"page":      strconv.Itoa(page),
		}
		urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues", params)
		respBody, headers, err := c.doRequest(ctx, "find thread", http.MethodGet, urlStr, nil)
		if err != nil {
			return 0, false, err
		}

		var issues []Issue
		if err := json.Unmarshal(respBody, &issues); err != nil {
			return 0, false, &ChannelError{Op: "find thread", Err: fmt.Errorf("failed to parse issues response: %w", err)}
		}

		for _, issue := range issues {
			if issue.PullRequest == nil && TitleHasMarker(issue.Title, marker) {
				return issue.Number, true, nil
			}
		}

		if _, ok := hasNextPage(headers); !ok {
			return 0, false, nil
		}
	}
	return 0, false, &ChannelError{Op: "find thread", Err: fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)}
}

// CreateThread opens a new issue and returns its number.
func (c *Client) CreateThread(ctx context.Context, title, body string) (int64, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues", nil)
	respBody, _, err := c.doRequest(ctx, "create thread", http.MethodPost, urlStr, map[string]string{
		"title": title,
		"body":  body,
	})
	if err != nil {
		return 0, err
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return 0, &ChannelError{Op: "create thread", Err: fmt.Errorf("failed to parse create response: %w", err)}
	}
	if issue.Number == 0 {
		return 0, &ChannelError{Op: "create thread", Err: errors.New("response carries no issue number")}
	}
	return issue.Number, nil
}

func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// doRequest performs an authenticated request. Network errors, 5xx and
// rate-limit responses are retried under c.BackOff; every other non-2xx
// status fails at once.
func (c *Client) doRequest(ctx context.Context, op, method, urlStr string, body any) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, nil, &ChannelError{Op: op, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
	}

	var (
		respBody []byte
		headers  http.Header
		status   int
	)
	attempt := func() error {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			status = 0
			return fmt.Errorf("request failed: %w", err)
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		status = resp.StatusCode
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case isRateLimited(resp):
			if d := retryAfter(resp.Header); d > 0 {
				select {
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				case <-time.After(d):
				}
			}
			return &statusError{message: "rate limited"}
		case resp.StatusCode >= 500:
			return &statusError{message: apiMessage(b, resp.Status)}
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(&statusError{message: apiMessage(b, resp.Status)})
		}

		respBody, headers = b, resp.Header
		return nil
	}

	newBackOff := c.BackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), MaxRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, nil, &ChannelError{Op: op, StatusCode: status, Err: err}
	}
	return respBody, headers, nil
}

// isRateLimited matches GitHub's two rate-limit signals: 429, or 403 with
// no remaining quota.
func isRateLimited(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0")
}

func retryAfter(h http.Header) time.Duration {
	seconds, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return min(time.Duration(seconds)*time.Second, MaxRetryAfter)
}

// apiMessage extracts GitHub's {"message": "..."} field, falling back to
// the HTTP status text.
func apiMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}
