package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"estatehub/backend/internal/models"
)

// HistoryLoader fetches the stored messages of a chat, oldest first.
type HistoryLoader interface {
	Messages(ctx context.Context, chatID string) ([]models.Message, error)
}

// ReadMarker marks every message of a chat as read for the caller.
type ReadMarker interface {
	MarkRead(ctx context.Context, chatID string) error
}

// APIError is a non-2xx REST response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// APIClient talks to the chat REST endpoints with a bearer token.
type APIClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

var (
	_ HistoryLoader = (*APIClient)(nil)
	_ ReadMarker    = (*APIClient)(nil)
)

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{BaseURL: baseURL, Token: token, HTTP: http.DefaultClient}
}

func (c *APIClient) Messages(ctx context.Context, chatID string) ([]models.Message, error) {
	var out []models.Message
	err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"/messages", &out)
	return out, err
}

func (c *APIClient) MarkRead(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/read", nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: body.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
