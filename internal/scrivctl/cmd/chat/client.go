package chat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/pkg/utils/json"
)

// chatRequest is the request body for /api/chat.
type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	PersonaID      string `json:"personaId,omitempty"`
	ChannelID      string `json:"channelId,omitempty"`
	Provider       string `json:"provider,omitempty"`
}

// chatResponse is the non-streaming response.
type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
	PersonaID      string `json:"personaId"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// errEnvelope is the failure envelope every endpoint shares.
type errEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

// sseChunk is one streamed delta event payload.
type sseChunk struct {
	Delta string `json:"delta"`
}

// Client is the HTTP client for the scriptorium chat API.
type Client struct {
	BaseURL        string
	ConversationID string
	PersonaID      string
	ChannelID      string
	HTTPClient     *http.Client
}

// NewClient creates a new chat client.
func NewClient(baseURL, conversationID, personaID, channelID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		ConversationID: conversationID,
		PersonaID:      personaID,
		ChannelID:      channelID,
		HTTPClient:     httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("SCRIPTORIUM_GATEWAY_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func decodeError(status int, body []byte) error {
	var envelope errEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("server error %s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	return fmt.Errorf("server returned %d: %s", status, string(body))
}

// StreamCallback is called for each text delta during streaming.
type StreamCallback func(delta string)

// Chat sends one message and returns the full reply (non-streaming).
func (c *Client) Chat(ctx context.Context, message string) (*chatResponse, error) {
	body, err := json.Marshal(chatRequest{
		Message:        message,
		ConversationID: c.ConversationID,
		PersonaID:      c.PersonaID,
		ChannelID:      c.ChannelID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, "/api/chat", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.ConversationID != "" {
		c.ConversationID = out.ConversationID
	}
	return &out, nil
}

// ChatStream sends one message and streams the reply, calling cb per delta.
// Returns the full reply when done.
func (c *Client) ChatStream(ctx context.Context, message string, cb StreamCallback) (string, error) {
	body, err := json.Marshal(chatRequest{
		Message:        message,
		ConversationID: c.ConversationID,
		PersonaID:      c.PersonaID,
		ChannelID:      c.ChannelID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, "/api/chat/stream", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", decodeError(resp.StatusCode, respBody)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if event == "done" {
				return full.String(), nil
			}
			var chunk sseChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Delta != "" {
				full.WriteString(chunk.Delta)
				if cb != nil {
					cb(chunk.Delta)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}

	return full.String(), nil
}
