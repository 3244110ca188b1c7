// Package event decodes GitHub Actions event payloads into the two
// triggers the bot reacts to: a new issue (record creation) and a new
// comment (commands).
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/adrgov/internal/github"
)

// ErrMalformed marks a payload that cannot be decoded into its event type.
var ErrMalformed = errors.New("malformed event payload")

// Kind classifies a decoded event.
type Kind uint8

const (
	KindIgnored Kind = iota
	KindCreation
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindCreation:
		return "creation"
	case KindComment:
		return "comment"
	default:
		return "ignored"
	}
}

// MarshalText renders the kind name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Creation is a record-creation trigger: a newly opened issue.
type Creation struct {
	SourceID int64  `json:"source_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Actor    string `json:"actor"`
}

// Comment is a command trigger: a comment posted on a thread.
type Comment struct {
	ThreadID int64  `json:"thread_id"`
	Body     string `json:"body"`
	Actor    string `json:"actor"`
}

// Event is one decoded invocation. Exactly one of Creation and Comment is
// meaningful, selected by Kind; Reason explains an ignored event.
type Event struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Creation Creation `json:"creation,omitzero"`
	Comment  Comment  `json:"comment,omitzero"`
	Reason   string   `json:"reason,omitempty"`
}

// discussion is only decoded to recognise the event shape.
type discussion struct {
	Number int64 `json:"number"`
}

type payload struct {
	Action     string          `json:"action"`
	Issue      *github.Issue   `json:"issue,omitempty"`
	Discussion *discussion     `json:"discussion,omitempty"`
	Comment    *github.Comment `json:"comment,omitempty"`
}

// Decode parses a webhook payload. name is the GitHub event name
// (GITHUB_EVENT_NAME); when empty it is inferred from the payload shape.
// Unsupported events and bot-authored content decode to KindIgnored.
func Decode(name string, data []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if name == "" {
		name = inferName(p)
	}
	ev := Event{Name: name}

	switch name {
	case "issues":
		if p.Action != "opened" {
			return ignored(ev, "issues action %q", p.Action), nil
		}
		if p.Issue == nil || p.Issue.Number <= 0 {
			return Event{}, fmt.Errorf("%w: issues event without issue number", ErrMalformed)
		}
		if p.Issue.User.IsBot() {
			return ignored(ev, "issue opened by bot %s", login(p.Issue.User)), nil
		}
		ev.Kind = KindCreation
		ev.Creation = Creation{
			SourceID: p.Issue.Number,
			Title:    p.Issue.Title,
			Body:     p.Issue.Body,
			Actor:    login(p.Issue.User),
		}
		return ev, nil

	case "discussion_comment":
		// Replies go to issue comments; discussions need the GraphQL API.
		return ignored(ev, "discussion threads are not supported"), nil

	case "issue_comment":
		if p.Action != "created" {
			return ignored(ev, "%s action %q", name, p.Action), nil
		}
		if p.Issue == nil || p.Issue.Number <= 0 || p.Comment == nil {
			return Event{}, fmt.Errorf("%w: %s event without thread or comment", ErrMalformed, name)
		}
		if p.Comment.User.IsBot() {
			return ignored(ev, "comment by bot %s", login(p.Comment.User)), nil
		}
		ev.Kind = KindComment
		ev.Comment = Comment{
			ThreadID: p.Issue.Number,
			Body:     p.Comment.Body,
			Actor:    login(p.Comment.User),
		}
		return ev, nil

	default:
		return ignored(ev, "unsupported event %q", name), nil
	}
}

// ReadFile decodes the payload stored at path (GITHUB_EVENT_PATH).
func ReadFile(name, path string) (Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("read event payload: %w", err)
	}
	return Decode(name, data)
}

func inferName(p payload) string {
	switch {
	case p.Comment != nil && p.Discussion != nil:
		return "discussion_comment"
	case p.Comment != nil:
		return "issue_comment"
	case p.Issue != nil:
		return "issues"
	default:
		return ""
	}
}

func ignored(ev Event, format string, args ...any) Event {
	ev.Kind = KindIgnored
	ev.Reason = fmt.Sprintf(format, args...)
	return ev
}

func login(u *github.User) string {
	if u == nil {
		return ""
	}
	return u.Login
}
