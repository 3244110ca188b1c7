package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/roach88/adrgov/internal/github"
)

// Post is one message recorded by Channel.
type Post struct {
	Thread  int64  `json:"thread"`
	Message string `json:"message"`
}

// Channel is an in-memory notification channel. Threads are numbered
// sequentially from the value given to NewChannel.
//
// Setting PostErr, FindErr or CreateErr makes the matching method fail,
// which lets tests exercise infrastructure failures.
type Channel struct {
	mu      sync.Mutex
	next    int64
	threads map[int64]string
	posts   []Post

	PostErr   error
	FindErr   error
	CreateErr error
}

// NewChannel creates an empty channel whose first created thread is
// numbered first.
func NewChannel(first int64) *Channel {
	return &Channel{next: first, threads: make(map[int64]string)}
}

// AddThread registers an existing thread.
func (c *Channel) AddThread(number int64, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads[number] = title
}

// Post records message on thread.
func (c *Channel) Post(_ context.Context, thread int64, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PostErr != nil {
		return c.PostErr
	}
	c.posts = append(c.posts, Post{Thread: thread, Message: message})
	return nil
}

// FindThread returns the lowest-numbered thread whose title carries marker.
func (c *Channel) FindThread(_ context.Context, marker string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FindErr != nil {
		return 0, false, c.FindErr
	}
	numbers := make([]int64, 0, len(c.threads))
	for n := range c.threads {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		if github.TitleHasMarker(c.threads[n], marker) {
			return n, true, nil
		}
	}
	return 0, false, nil
}

// CreateThread opens a new thread and returns its number.
func (c *Channel) CreateThread(_ context.Context, title, _ string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CreateErr != nil {
		return 0, c.CreateErr
	}
	n := c.next
	c.next++
	c.threads[n] = title
	return n, nil
}

// Posts returns every recorded post in order.
func (c *Channel) Posts() []Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// Messages returns the messages posted to thread, in order.
func (c *Channel) Messages(thread int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, p := range c.posts {
		if p.Thread == thread {
			out = append(out, p.Message)
		}
	}
	return out
}

// Title returns the title of thread, or "" if it does not exist.
func (c *Channel) Title(thread int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threads[thread]
}
