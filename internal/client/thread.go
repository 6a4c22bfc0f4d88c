package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tsena/internal/domain/entity"
)

const (
	threadPollInterval = 3 * time.Second
	threadPageSize     = 100
)

type EntryKind int

const (
	// EntryLocal is an optimistic message not yet confirmed by a poll.
	EntryLocal EntryKind = iota
	// EntryCanonical is a server-assigned row from the ordered log.
	EntryCanonical
)

// Entry is one rendered row of an open thread.
type Entry struct {
	Kind    EntryKind
	Message *entity.Message
}

type localEntry struct {
	tempID   string
	message  *entity.Message
	serverID string // set once the send succeeded
}

// ThreadView is the per-open-conversation poller. It renders the
// server's canonical log plus any optimistic local sends still waiting
// for confirmation. Exactly one ThreadView exists per open thread and
// its timer dies with the view.
type ThreadView struct {
	client         *Client
	conversationID string
	userID         string

	mu        sync.Mutex
	canonical []*entity.Message
	local     []*localEntry
	compose   string

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewThreadView(ctx context.Context, c *Client, conversationID, userID string) *ThreadView {
	ctx, cancel := context.WithCancel(ctx)
	v := &ThreadView{
		client:         c,
		conversationID: conversationID,
		userID:         userID,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}

	go pollLoop(ctx, threadPollInterval, v.done, v.poll)

	return v
}

// poll replaces the canonical list wholesale with the server's ordered
// log and drops local entries the log now covers. Failures are silent:
// state stays as-is until the next tick.
func (v *ThreadView) poll(ctx context.Context) {
	messages, _, err := v.client.ListMessages(ctx, v.conversationID, 1, threadPageSize)
	if err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.canonical = messages

	ids := make(map[string]bool, len(messages))
	for _, m := range messages {
		ids[m.ID] = true
	}

	remaining := v.local[:0]
	for _, le := range v.local {
		if le.serverID != "" && ids[le.serverID] {
			continue
		}
		remaining = append(remaining, le)
	}
	v.local = remaining
}

// Entries returns the rendered thread: canonical rows in server order
// followed by pending optimistic rows.
func (v *ThreadView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries := make([]Entry, 0, len(v.canonical)+len(v.local))
	for _, m := range v.canonical {
		entries = append(entries, Entry{Kind: EntryCanonical, Message: m})
	}
	for _, le := range v.local {
		entries = append(entries, Entry{Kind: EntryLocal, Message: le.message})
	}
	return entries
}

func (v *ThreadView) SetCompose(text string) {
	v.mu.Lock()
	v.compose = text
	v.mu.Unlock()
}

func (v *ThreadView) Compose() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.compose
}

// Send submits the compose text optimistically: the thread shows the
// message and the input clears before the request resolves. On failure
// the optimistic row disappears and the text comes back so the user
// can retry.
func (v *ThreadView) Send() {
	v.mu.Lock()
	body := v.compose
	if body == "" {
		v.mu.Unlock()
		return
	}
	v.compose = ""

	le := &localEntry{
		tempID: "local-" + uuid.New().String(),
		message: &entity.Message{
			ConversationID: v.conversationID,
			SenderID:       v.userID,
			Body:           body,
			CreatedAt:      time.Now(),
		},
	}
	le.message.ID = le.tempID
	v.local = append(v.local, le)
	v.mu.Unlock()

	go v.deliver(le, body)
}

func (v *ThreadView) deliver(le *localEntry, body string) {
	message, err := v.client.SendMessage(v.ctx, v.conversationID, body)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.removeLocal(le.tempID)
		// Leave newer typing alone if the user already started over.
		if v.compose == "" {
			v.compose = body
		}
		return
	}

	le.serverID = message.ID
}

// removeLocal must be called with the lock held.
func (v *ThreadView) removeLocal(tempID string) {
	for i, le := range v.local {
		if le.tempID == tempID {
			v.local = append(v.local[:i], v.local[i+1:]...)
			return
		}
	}
}

// MarkRead flags the thread's incoming messages as read on the server.
func (v *ThreadView) MarkRead() error {
	return v.client.MarkConversationRead(v.ctx, v.conversationID)
}

func (v *ThreadView) Close() {
	v.closeOnce.Do(func() {
		v.cancel()
		<-v.done
	})
}
