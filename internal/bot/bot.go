package bot

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/registry"
	"github.com/okunev/appwatch/internal/telegram"
)

const greeting = "Hi! I monitor storefront availability for tracked apps.\n" +
	"Availability change notifications will now be sent to this chat."

// Bot long-polls the chat transport for the registration command. /start in
// a chat registers that chat as a notification destination.
type Bot struct {
	Logger      *zap.Logger
	Client      *telegram.Client
	Registry    *registry.Registry
	PollTimeout time.Duration

	offset int64
}

func New(logger *zap.Logger, client *telegram.Client, reg *registry.Registry) *Bot {
	return &Bot{
		Logger:      logger,
		Client:      client,
		Registry:    reg,
		PollTimeout: 30 * time.Second,
	}
}

// Run polls until ctx ends. Poll errors back off briefly and continue; the
// command loop must not die because the transport hiccuped.
func (b *Bot) Run(ctx context.Context) {
	b.Logger.Info("bot_started")
	for {
		if ctx.Err() != nil {
			b.Logger.Info("bot_stopped")
			return
		}
		updates, err := b.Client.GetUpdates(ctx, b.offset, b.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.Logger.Info("bot_stopped")
				return
			}
			b.Logger.Warn("bot_poll_error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil {
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	if text != "/start" && !strings.HasPrefix(text, "/start@") {
		return
	}

	chatID := telegram.ChatIDString(u.Message.Chat.ID)
	label := u.Message.Chat.Title
	if label == "" {
		label = chatID
	}

	created, err := b.Registry.Register(ctx, domain.Destination{
		Channel: domain.ChannelTelegram,
		ID:      chatID,
		Label:   label,
	})
	if err != nil {
		// registration stays active in memory; persistence already logged
		b.Logger.Warn("bot_register_persist_failed", zap.String("chat_id", chatID), zap.Error(err))
	}
	b.Logger.Info("bot_start_command",
		zap.String("chat_id", chatID),
		zap.String("label", label),
		zap.Bool("new", created),
	)

	if err := b.Client.SendText(ctx, chatID, greeting); err != nil {
		b.Logger.Warn("bot_reply_failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}
