// Package github implements the notification channel over the GitHub REST
// API. Threads are issues: a reply is an issue comment, and a new thread is
// a new issue.
package github

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient failures.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// MaxRetryAfter caps how long a Retry-After header can make us wait.
	MaxRetryAfter = time.Minute

	// MaxPageSize is the maximum number of issues to fetch per page.
	MaxPageSize = 100

	// MaxPages bounds pagination against malformed Link headers.
	MaxPages = 100

	// RequestsPerSecond and RequestBurst pace outgoing requests.
	RequestsPerSecond = 10
	RequestBurst      = 10
)

// Client talks to one repository.
type Client struct {
	Token      string       // GitHub token; GITHUB_TOKEN in Actions
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client

	// BackOff returns a fresh retry policy for each request. BackOff
	// implementations are stateful, so this must not return a shared value.
	BackOff func() backoff.BackOff

	// Limiter paces every attempt, retries included. Nil disables pacing.
	Limiter *rate.Limiter
}

// Issue is the subset of the GitHub issue payload the bot reads.
type Issue struct {
	Number      int64    `json:"number"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	State       string   `json:"state"`
	User        *User    `json:"user,omitempty"`
	PullRequest *PullRef `json:"pull_request,omitempty"` // Non-nil if this is a PR
}

// PullRef indicates an issue is actually a pull request.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"` // "User", "Bot" or "Organization"
}

// IsBot reports whether the account is an app or bot.
func (u *User) IsBot() bool {
	return u != nil && u.Type == "Bot"
}

// Comment is an issue comment.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User *User  `json:"user,omitempty"`
}
