package event

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile_IssueOpened(t *testing.T) {
	ev, err := ReadFile("issues", filepath.Join("testdata", "issues_opened.json"))
	require.NoError(t, err)

	assert.Equal(t, KindCreation, ev.Kind)
	assert.Equal(t, Creation{
		SourceID: 42,
		Title:    "Pick a message queue",
		Body:     "We need an architecture decision on messaging.",
		Actor:    "alice",
	}, ev.Creation)
}

func TestReadFile_IssueComment(t *testing.T) {
	ev, err := ReadFile("issue_comment", filepath.Join("testdata", "issue_comment_created.json"))
	require.NoError(t, err)

	assert.Equal(t, KindComment, ev.Kind)
	assert.Equal(t, Comment{
		ThreadID: 43,
		Body:     "/adr fill context\nWe need a queue.",
		Actor:    "bob",
	}, ev.Comment)
}

func TestReadFile_DiscussionComment(t *testing.T) {
	ev, err := ReadFile("discussion_comment", filepath.Join("testdata", "discussion_comment_created.json"))
	require.NoError(t, err)

	assert.Equal(t, KindIgnored, ev.Kind)
	assert.Equal(t, "discussion threads are not supported", ev.Reason)
	assert.Zero(t, ev.Comment)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("issues", filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read event payload")
}

func TestDecode_InfersName(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		kind    Kind
	}{
		{"issue", `{"action":"opened","issue":{"number":1,"title":"t","user":{"login":"a"}}}`, "issues", KindCreation},
		{"issue comment", `{"action":"created","issue":{"number":1},"comment":{"body":"x","user":{"login":"a"}}}`, "issue_comment", KindComment},
		{"discussion comment", `{"action":"created","discussion":{"number":3},"comment":{"body":"x","user":{"login":"a"}}}`, "discussion_comment", KindIgnored},
		{"unknown", `{"action":"completed"}`, "", KindIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode("", []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Name)
			assert.Equal(t, tt.kind, ev.Kind)
		})
	}
}

func TestDecode_Ignored(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload string
		reason  string
	}{
		{
			name:    "edited issue",
			event:   "issues",
			payload: `{"action":"edited","issue":{"number":1}}`,
			reason:  `issues action "edited"`,
		},
		{
			name:    "bot issue",
			event:   "issues",
			payload: `{"action":"opened","issue":{"number":1,"user":{"login":"dependabot[bot]","type":"Bot"}}}`,
			reason:  "issue opened by bot dependabot[bot]",
		},
		{
			name:    "deleted comment",
			event:   "issue_comment",
			payload: `{"action":"deleted","issue":{"number":1},"comment":{"body":"x"}}`,
			reason:  `issue_comment action "deleted"`,
		},
		{
			name:    "bot comment",
			event:   "issue_comment",
			payload: `{"action":"created","issue":{"number":1},"comment":{"body":"ADR-1 approved","user":{"login":"github-actions[bot]","type":"Bot"}}}`,
			reason:  "comment by bot github-actions[bot]",
		},
		{
			name:    "push",
			event:   "push",
			payload: `{}`,
			reason:  `unsupported event "push"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.event, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, KindIgnored, ev.Kind)
			assert.Equal(t, tt.reason, ev.Reason)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload string
	}{
		{"not json", "issues", `{`},
		{"issue without number", "issues", `{"action":"opened","issue":{"title":"t"}}`},
		{"no issue", "issues", `{"action":"opened"}`},
		{"comment without thread", "issue_comment", `{"action":"created","comment":{"body":"x"}}`},
		{"thread without comment", "issue_comment", `{"action":"created","issue":{"number":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.event, []byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "creation", KindCreation.String())
	assert.Equal(t, "comment", KindComment.String())
	assert.Equal(t, "ignored", KindIgnored.String())
}
