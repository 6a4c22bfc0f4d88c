package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsena/internal/domain/entity"
)

// fakeAPI is a minimal envelope-speaking server for the endpoints the
// polling views hit.
type fakeAPI struct {
	mu            sync.Mutex
	messages      []*entity.Message
	unreadMsgs    int64
	unreadNotifs  int64
	conversations []map[string]interface{}
	failSend      bool
	failList      bool
	listCalls     int

	srv *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/messages"):
		f.listCalls++
		if f.failList {
			writeFailure(w)
			return
		}
		writeSuccess(w, map[string]interface{}{
			"items": f.messages,
			"total": len(f.messages),
		})

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages"):
		if f.failSend {
			writeFailure(w)
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		message := &entity.Message{
			ID:             fmt.Sprintf("m%d", len(f.messages)+1),
			ConversationID: "c1",
			SenderID:       "me",
			Body:           req.Body,
			Seq:            int64(len(f.messages) + 1),
			CreatedAt:      time.Now(),
		}
		f.messages = append(f.messages, message)
		writeSuccess(w, message)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/conversations":
		f.listCalls++
		if f.failList {
			writeFailure(w)
			return
		}
		writeSuccess(w, f.conversations)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/conversations/unread":
		writeSuccess(w, map[string]int64{"unread": f.unreadMsgs})

	case r.Method == http.MethodGet && r.URL.Path == "/v1/notifications/unread":
		writeSuccess(w, map[string]int64{"unread": f.unreadNotifs})

	default:
		writeSuccess(w, map[string]string{"status": "ok"})
	}
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func writeFailure(w http.ResponseWriter) {
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": "INTERNAL_ERROR", "message": "boom"},
	})
}

func newThread(t *testing.T, f *fakeAPI) *ThreadView {
	t.Helper()

	v := NewThreadView(context.Background(), New(f.srv.URL, "token"), "c1", "me")
	t.Cleanup(v.Close)
	return v
}

func TestThreadViewOptimisticSend(t *testing.T) {
	f := newFakeAPI(t)
	v := newThread(t, f)

	v.SetCompose("hello there")
	v.Send()

	// The optimistic row appears and the input clears before the
	// request resolves.
	assert.Equal(t, "", v.Compose())

	entries := v.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, EntryLocal, last.Kind)
	assert.Equal(t, "hello there", last.Message.Body)

	// Once confirmed and re-polled, the canonical row supersedes it.
	require.Eventually(t, func() bool {
		v.poll(context.Background())
		entries := v.Entries()
		return len(entries) == 1 && entries[0].Kind == EntryCanonical
	}, 2*time.Second, 10*time.Millisecond)

	entries = v.Entries()
	assert.Equal(t, "hello there", entries[0].Message.Body)
	assert.Equal(t, "m1", entries[0].Message.ID)
}

func TestThreadViewSendFailureRollsBack(t *testing.T) {
	f := newFakeAPI(t)
	f.failSend = true
	v := newThread(t, f)

	v.SetCompose("will not make it")
	v.Send()

	// The optimistic row disappears and the text comes back.
	require.Eventually(t, func() bool {
		return v.Compose() == "will not make it"
	}, 2*time.Second, 10*time.Millisecond)

	for _, e := range v.Entries() {
		assert.NotEqual(t, EntryLocal, e.Kind)
	}
}

func TestThreadViewSendFailureKeepsNewerTyping(t *testing.T) {
	f := newFakeAPI(t)
	f.failSend = true
	v := newThread(t, f)

	v.SetCompose("first try")
	v.Send()
	v.SetCompose("second draft")

	require.Eventually(t, func() bool {
		return len(v.Entries()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "second draft", v.Compose())
}

func TestThreadViewFailedPollKeepsState(t *testing.T) {
	f := newFakeAPI(t)
	f.messages = []*entity.Message{
		{ID: "m1", ConversationID: "c1", SenderID: "other", Body: "hi", Seq: 1},
	}
	v := newThread(t, f)

	v.poll(context.Background())
	require.Len(t, v.Entries(), 1)

	f.mu.Lock()
	f.failList = true
	f.mu.Unlock()

	v.poll(context.Background())

	// State untouched, no blanking.
	entries := v.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "hi", entries[0].Message.Body)
}

func TestConversationListViewPolls(t *testing.T) {
	f := newFakeAPI(t)
	f.conversations = []map[string]interface{}{
		{"id": "c1", "buyer_id": "me", "seller_id": "s1", "listing_id": "l1", "unread_count": 2},
	}

	v := NewConversationListView(context.Background(), New(f.srv.URL, "token"))
	defer v.Close()

	require.Eventually(t, func() bool {
		return len(v.Conversations()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	conversations := v.Conversations()
	assert.Equal(t, "c1", conversations[0].ID)
	assert.Equal(t, int64(2), conversations[0].UnreadCount)
}

func TestUnreadBadgePollsBothCounts(t *testing.T) {
	f := newFakeAPI(t)
	f.unreadMsgs = 3
	f.unreadNotifs = 5

	b := NewUnreadBadge(context.Background(), New(f.srv.URL, "token"))
	defer b.Close()

	require.Eventually(t, func() bool {
		return b.MessageCount() == 3 && b.NotificationCount() == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewTeardownIsDeterministic(t *testing.T) {
	f := newFakeAPI(t)

	v := NewConversationListView(context.Background(), New(f.srv.URL, "token"))

	// Close blocks until the polling goroutine is gone and is safe to
	// call twice.
	v.Close()
	v.Close()

	select {
	case <-v.done:
	default:
		t.Fatal("polling goroutine still running after Close")
	}

	f.mu.Lock()
	calls := f.listCalls
	f.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, calls, f.listCalls)
}

func TestContextCancelStopsPolling(t *testing.T) {
	f := newFakeAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	v := NewConversationListView(ctx, New(f.srv.URL, "token"))

	cancel()

	select {
	case <-v.done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling goroutine did not stop on context cancel")
	}

	// Close after cancel is still fine.
	v.Close()
}
