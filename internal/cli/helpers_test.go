package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolate clears the variables config.Load reads and moves into an empty
// directory. It returns that directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"GITHUB_TOKEN", "GITHUB_REPOSITORY", "GITHUB_API_URL",
		"GITHUB_EVENT_NAME", "GITHUB_EVENT_PATH",
		"ADRGOV_KEYWORD", "ADRGOV_DATABASE", "ADRGOV_TIMEOUT",
		"ADRGOV_GITHUB_TOKEN", "ADRGOV_GITHUB_OWNER", "ADRGOV_GITHUB_REPO",
		"ADRGOV_GITHUB_API_URL", "ADRGOV_EVENT_NAME", "ADRGOV_EVENT_PATH",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// postedComment is a comment the fake GitHub received.
type postedComment struct {
	Issue int64
	Body  string
}

// fakeGitHub serves the issue endpoints the bot uses for acme/platform.
type fakeGitHub struct {
	*httptest.Server

	mu        sync.Mutex
	next      int64
	issues    []map[string]any
	comments  []postedComment
	createErr int // status returned by issue creation when non-zero
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	gh := &fakeGitHub{next: 100}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/platform/issues", func(w http.ResponseWriter, r *http.Request) {
		gh.mu.Lock()
		defer gh.mu.Unlock()
		_ = json.NewEncoder(w).Encode(gh.issues)
	})
	mux.HandleFunc("POST /repos/acme/platform/issues", func(w http.ResponseWriter, r *http.Request) {
		gh.mu.Lock()
		defer gh.mu.Unlock()
		if gh.createErr != 0 {
			w.WriteHeader(gh.createErr)
			_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
			return
		}
		var req struct {
			Title string `json:"title"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		issue := map[string]any{"number": gh.next, "title": req.Title}
		gh.next++
		gh.issues = append(gh.issues, issue)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(issue)
	})
	mux.HandleFunc("POST /repos/acme/platform/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.ParseInt(r.PathValue("number"), 10, 64)
		var req struct {
			Body string `json:"body"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gh.mu.Lock()
		gh.comments = append(gh.comments, postedComment{Issue: n, Body: req.Body})
		gh.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	gh.Server = httptest.NewServer(mux)
	t.Cleanup(gh.Close)
	return gh
}

func (gh *fakeGitHub) Comments() []postedComment {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	return append([]postedComment(nil), gh.comments...)
}

// useGitHub points the configuration at gh.
func useGitHub(t *testing.T, gh *fakeGitHub) {
	t.Helper()
	t.Setenv("GITHUB_REPOSITORY", "acme/platform")
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_API_URL", gh.URL)
}

const issueOpenedPayload = `{
  "action": "opened",
  "issue": {
    "number": 42,
    "title": "Pick a message queue",
    "body": "We need an architecture decision on messaging.",
    "user": {"login": "alice", "type": "User"}
  }
}`

const fillCommentPayload = `{
  "action": "created",
  "issue": {"number": 100, "title": "ADR – Issue #42 – Pick a message queue"},
  "comment": {
    "id": 7,
    "body": "/adr fill context\nWe need a queue.",
    "user": {"login": "bob", "type": "User"}
  }
}`
