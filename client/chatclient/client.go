// Package chatclient is the HTTP binding of the chat API used by client sessions.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vibin_chat/apperrors"
	"vibin_chat/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a message. Server errors come back as *apperrors.AppError with the code
// matching the response status, so callers can tell rejections from failures.
func (c *Client) Send(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	var resp models.SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches a conversation, oldest first
func (c *Client) History(ctx context.Context, conversationID, userID string) ([]models.MessageView, error) {
	path := "/api/chat/conversations/" + url.PathEscape(conversationID) + "/messages?userId=" + url.QueryEscape(userID)
	var views []models.MessageView
	if err := c.do(ctx, http.MethodGet, path, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// HistoryBetween fetches the history of a pair through the legacy route
func (c *Client) HistoryBetween(ctx context.Context, userA, userB string) ([]models.MessageView, error) {
	q := url.Values{"userA": {userA}, "userB": {userB}}
	var views []models.MessageView
	if err := c.do(ctx, http.MethodGet, "/api/chat/messages?"+q.Encode(), nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		code := apperrors.Code(e.Code)
		if code == "" {
			code = codeForStatus(resp.StatusCode)
		}
		return apperrors.New(code, e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// codeForStatus guesses the code when the body carries none
func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeInvalidArgument
	case http.StatusForbidden:
		return apperrors.CodePermissionDenied
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	default:
		return apperrors.CodeInternal
	}
}
