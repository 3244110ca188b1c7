package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_CreateThreadNumbersSequentially(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(100)

	first, err := ch.CreateThread(ctx, "ADR – Issue #1 – One", "body")
	require.NoError(t, err)
	second, err := ch.CreateThread(ctx, "ADR – Issue #2 – Two", "body")
	require.NoError(t, err)

	assert.Equal(t, int64(100), first)
	assert.Equal(t, int64(101), second)
	assert.Equal(t, "ADR – Issue #2 – Two", ch.Title(101))
	assert.Empty(t, ch.Title(999))
}

func TestChannel_FindThread(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(100)
	ch.AddThread(30, "ADR – Issue #50 – Other")
	ch.AddThread(20, "ADR – Issue #5 – Second copy")
	ch.AddThread(10, "ADR – Issue #5 – First")

	n, ok, err := ch.FindThread(ctx, "Issue #5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), n, "lowest number wins")

	n, ok, err = ch.FindThread(ctx, "Issue #50")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(30), n)

	_, ok, err = ch.FindThread(ctx, "Issue #7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannel_PostsAndMessages(t *testing.T) {
	ctx := context.Background()
	ch := NewChannel(1)

	require.NoError(t, ch.Post(ctx, 1, "first"))
	require.NoError(t, ch.Post(ctx, 2, "other"))
	require.NoError(t, ch.Post(ctx, 1, "second"))

	assert.Equal(t, []string{"first", "second"}, ch.Messages(1))
	assert.Equal(t, []Post{
		{Thread: 1, Message: "first"},
		{Thread: 2, Message: "other"},
		{Thread: 1, Message: "second"},
	}, ch.Posts())

	posts := ch.Posts()
	posts[0].Message = "changed"
	assert.Equal(t, "first", ch.Posts()[0].Message)
}

func TestChannel_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	ch := NewChannel(1)
	ch.PostErr, ch.FindErr, ch.CreateErr = boom, boom, boom

	assert.ErrorIs(t, ch.Post(ctx, 1, "x"), boom)
	_, _, err := ch.FindThread(ctx, "Issue #1")
	assert.ErrorIs(t, err, boom)
	_, err = ch.CreateThread(ctx, "t", "b")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, ch.Posts())
}
