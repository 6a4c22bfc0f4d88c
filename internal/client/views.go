package client

import (
	"context"
	"sync"
	"time"

	"tsena/internal/usecase"
)

const (
	conversationListInterval = 3 * time.Second
	unreadBadgeInterval      = 5 * time.Second
)

// pollLoop fetches once immediately, then on every tick until the
// context is cancelled. The loop is sequential, so a new poll never
// starts while the previous one is still in flight.
func pollLoop(ctx context.Context, interval time.Duration, done chan struct{}, poll func(context.Context)) {
	defer close(done)

	poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

// ConversationListView keeps a live copy of the caller's conversation
// list. The polling goroutine is owned by the view's context; Close or
// context cancellation stops it deterministically.
type ConversationListView struct {
	client *Client

	mu            sync.Mutex
	conversations []*usecase.ConversationResponse

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewConversationListView(ctx context.Context, c *Client) *ConversationListView {
	ctx, cancel := context.WithCancel(ctx)
	v := &ConversationListView{
		client: c,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go pollLoop(ctx, conversationListInterval, v.done, v.poll)

	return v
}

// poll replaces the list wholesale with the server's canonical state.
// A failed poll leaves existing state untouched and waits for the next
// tick.
func (v *ConversationListView) poll(ctx context.Context) {
	conversations, err := v.client.ListConversations(ctx)
	if err != nil {
		return
	}

	v.mu.Lock()
	v.conversations = conversations
	v.mu.Unlock()
}

func (v *ConversationListView) Conversations() []*usecase.ConversationResponse {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]*usecase.ConversationResponse, len(v.conversations))
	copy(out, v.conversations)
	return out
}

func (v *ConversationListView) Close() {
	v.closeOnce.Do(func() {
		v.cancel()
		<-v.done
	})
}

// UnreadBadge keeps the navbar and bottom-nav counters fresh. Both
// counts come from recomputed server queries, so every surface reading
// this badge converges on the same numbers within one interval.
type UnreadBadge struct {
	client *Client

	mu            sync.Mutex
	messages      int64
	notifications int64

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewUnreadBadge(ctx context.Context, c *Client) *UnreadBadge {
	ctx, cancel := context.WithCancel(ctx)
	b := &UnreadBadge{
		client: c,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go pollLoop(ctx, unreadBadgeInterval, b.done, b.poll)

	return b
}

func (b *UnreadBadge) poll(ctx context.Context) {
	if messages, err := b.client.UnreadMessageCount(ctx); err == nil {
		b.mu.Lock()
		b.messages = messages
		b.mu.Unlock()
	}

	if notifications, err := b.client.UnreadNotificationCount(ctx); err == nil {
		b.mu.Lock()
		b.notifications = notifications
		b.mu.Unlock()
	}
}

func (b *UnreadBadge) MessageCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages
}

func (b *UnreadBadge) NotificationCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notifications
}

func (b *UnreadBadge) Close() {
	b.closeOnce.Do(func() {
		b.cancel()
		<-b.done
	})
}
