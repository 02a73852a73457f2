package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okunev/appwatch/internal/domain"
)

// Webhook posts a text payload to the destination URL. 200 and 204 count as
// delivered; 404 and 410 mean the endpoint is gone.
type Webhook struct {
	Client *http.Client
}

func NewWebhook() *Webhook {
	return &Webhook{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Name() string { return domain.ChannelWebhook }

type webhookPayload struct {
	Text string `json:"text"`
}

func (w *Webhook) Send(ctx context.Context, dest domain.Destination, msg Message) error {
	body, _ := json.Marshal(webhookPayload{Text: msg.Markdown()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("webhook %s: %s: %w", dest.ID, resp.Status, ErrDestinationGone)
	default:
		return fmt.Errorf("webhook %s: %s", dest.ID, resp.Status)
	}
}
