package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrChatGone marks delivery failures that mean the chat no longer accepts
// messages from the bot (blocked, deleted, bot kicked).
var ErrChatGone = errors.New("telegram: chat gone")

// Client is a minimal Bot API client: sendMessage plus getUpdates long
// polling. No SDK; the API is two JSON endpoints.
type Client struct {
	Token   string
	BaseURL string
	HTTP    *http.Client
}

func New(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: "https://api.telegram.org",
		HTTP:    &http.Client{Timeout: 40 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal: %w", method, err)
	}
	u := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("telegram %s: decode: %w", method, err)
	}
	if !ar.OK {
		if isGone(ar) {
			return fmt.Errorf("telegram %s: %s: %w", method, ar.Description, ErrChatGone)
		}
		return fmt.Errorf("telegram %s: %d %s", method, ar.ErrorCode, ar.Description)
	}
	if out != nil {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return fmt.Errorf("telegram %s: result: %w", method, err)
		}
	}
	return nil
}

// isGone matches the transport's "destination no longer exists" signals.
func isGone(ar apiResponse) bool {
	if ar.ErrorCode == 403 {
		return true
	}
	return strings.Contains(ar.Description, "bot was blocked") ||
		strings.Contains(ar.Description, "chat not found")
}

type sendMessageReq struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendHTML delivers an HTML-formatted message to a chat.
func (c *Client) SendHTML(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "sendMessage", sendMessageReq{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}, nil)
}

// SendText delivers a plain-text message (command replies).
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "sendMessage", sendMessageReq{ChatID: chatID, Text: text}, nil)
}

// Update is one getUpdates item; only the fields the /start handler needs.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"chat"`
	} `json:"message"`
}

type getUpdatesReq struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls for new updates past offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var out []Update
	err := c.call(ctx, "getUpdates", getUpdatesReq{
		Offset:  offset,
		Timeout: int(timeout / time.Second),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChatIDString formats a numeric chat id the way destinations store it.
func ChatIDString(id int64) string { return strconv.FormatInt(id, 10) }
