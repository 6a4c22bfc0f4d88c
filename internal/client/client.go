// Package client is a polling sync client for the messaging API. It
// keeps view state (conversation list, unread badges, open threads)
// eventually consistent with the server by re-fetching on short fixed
// intervals and reconciling wholesale, with optimistic local sends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tsena/internal/domain/entity"
	"tsena/internal/usecase"
)

const defaultRequestTimeout = 10 * time.Second

// APIError is the error payload of a failed API response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

type page struct {
	Items json.RawMessage `json:"items"`
	Total int64           `json:"total"`
}

// Client is a thin HTTP client for the /v1 API. Every request carries
// the bearer token and a bounded timeout, so a stalled server can
// never wedge a polling loop.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}

	if !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) ListConversations(ctx context.Context) ([]*usecase.ConversationResponse, error) {
	var conversations []*usecase.ConversationResponse
	if err := c.do(ctx, http.MethodGet, "/v1/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (c *Client) StartConversation(ctx context.Context, listingID, initialMessage string) (*usecase.ConversationResponse, error) {
	req := map[string]string{
		"listing_id":      listingID,
		"initial_message": initialMessage,
	}
	var conv usecase.ConversationResponse
	if err := c.do(ctx, http.MethodPost, "/v1/conversations", req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListMessages fetches one page of a conversation's ordered history.
func (c *Client) ListMessages(ctx context.Context, conversationID string, pageNum, limit int) ([]*entity.Message, int64, error) {
	path := fmt.Sprintf("/v1/conversations/%s/messages?page=%d&limit=%d", conversationID, pageNum, limit)

	var pg page
	if err := c.do(ctx, http.MethodGet, path, nil, &pg); err != nil {
		return nil, 0, err
	}

	var messages []*entity.Message
	if pg.Items != nil {
		if err := json.Unmarshal(pg.Items, &messages); err != nil {
			return nil, 0, err
		}
	}
	return messages, pg.Total, nil
}

func (c *Client) SendMessage(ctx context.Context, conversationID, body string) (*entity.Message, error) {
	req := map[string]string{"body": body}

	var message entity.Message
	if err := c.do(ctx, http.MethodPost, "/v1/conversations/"+conversationID+"/messages", req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (c *Client) MarkConversationRead(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodPut, "/v1/conversations/"+conversationID+"/read", nil, nil)
}

type unreadPayload struct {
	Unread int64 `json:"unread"`
}

func (c *Client) UnreadMessageCount(ctx context.Context) (int64, error) {
	var payload unreadPayload
	if err := c.do(ctx, http.MethodGet, "/v1/conversations/unread", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Unread, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int64, error) {
	var payload unreadPayload
	if err := c.do(ctx, http.MethodGet, "/v1/notifications/unread", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Unread, nil
}

func (c *Client) ListNotifications(ctx context.Context, pageNum, limit int) ([]*entity.Notification, int64, error) {
	path := fmt.Sprintf("/v1/notifications?page=%d&limit=%d", pageNum, limit)

	var pg page
	if err := c.do(ctx, http.MethodGet, path, nil, &pg); err != nil {
		return nil, 0, err
	}

	var notifications []*entity.Notification
	if pg.Items != nil {
		if err := json.Unmarshal(pg.Items, &notifications); err != nil {
			return nil, 0, err
		}
	}
	return notifications, pg.Total, nil
}

// MarkNotificationsRead marks the given ids read, or everything when
// ids is empty.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []string) error {
	req := map[string]interface{}{
		"ids": ids,
		"all": len(ids) == 0,
	}
	return c.do(ctx, http.MethodPut, "/v1/notifications", req, nil)
}
