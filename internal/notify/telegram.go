package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/telegram"
)

// Telegram delivers HTML messages to chat destinations via the Bot API.
type Telegram struct {
	Client *telegram.Client
}

func NewTelegram(c *telegram.Client) *Telegram {
	if c == nil {
		return nil
	}
	return &Telegram{Client: c}
}

func (t *Telegram) Name() string { return domain.ChannelTelegram }

func (t *Telegram) Send(ctx context.Context, dest domain.Destination, msg Message) error {
	err := t.Client.SendHTML(ctx, dest.ID, msg.HTML())
	if err == nil {
		return nil
	}
	if errors.Is(err, telegram.ErrChatGone) {
		return fmt.Errorf("chat %s: %w", dest.ID, ErrDestinationGone)
	}
	return err
}
