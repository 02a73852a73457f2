package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/telegram"
)

func telegramChannel(t *testing.T, resp string) (*Telegram, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resp))
	}))
	c := telegram.New("tok")
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return NewTelegram(c), srv
}

func TestTelegramChannel_MapsChatGone(t *testing.T) {
	ch, srv := telegramChannel(t, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	defer srv.Close()

	err := ch.Send(context.Background(), domain.Destination{Channel: domain.ChannelTelegram, ID: "42"}, sampleMessage())
	if !errors.Is(err, ErrDestinationGone) {
		t.Fatalf("blocked chat must map to ErrDestinationGone, got %v", err)
	}
}

func TestTelegramChannel_PassesOtherErrors(t *testing.T) {
	ch, srv := telegramChannel(t, `{"ok":false,"error_code":500,"description":"Internal"}`)
	defer srv.Close()

	err := ch.Send(context.Background(), domain.Destination{Channel: domain.ChannelTelegram, ID: "42"}, sampleMessage())
	if err == nil || errors.Is(err, ErrDestinationGone) {
		t.Fatalf("other failures must not classify as gone, got %v", err)
	}
}

func TestNewTelegram_NilClientDisables(t *testing.T) {
	if NewTelegram(nil) != nil {
		t.Fatalf("nil client should disable the channel")
	}
}
