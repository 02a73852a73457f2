package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fakeBotAPI(t *testing.T, handler func(method string, body map[string]any) (int, string)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		code, resp := handler(method, body)
		w.WriteHeader(code)
		_, _ = w.Write([]byte(resp))
	}))
	c := New("test-token")
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return c, srv
}

func TestSendHTML_OK(t *testing.T) {
	var gotText, gotMode string
	c, srv := fakeBotAPI(t, func(method string, body map[string]any) (int, string) {
		if method != "sendMessage" {
			t.Fatalf("unexpected method %s", method)
		}
		gotText, _ = body["text"].(string)
		gotMode, _ = body["parse_mode"].(string)
		return 200, `{"ok":true,"result":{}}`
	})
	defer srv.Close()

	if err := c.SendHTML(context.Background(), "42", "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotText != "<b>hi</b>" || gotMode != "HTML" {
		t.Fatalf("payload wrong: text=%q mode=%q", gotText, gotMode)
	}
}

func TestSend_ChatGoneClassification(t *testing.T) {
	cases := []string{
		`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
		`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
	}
	for _, resp := range cases {
		r := resp
		c, srv := fakeBotAPI(t, func(method string, body map[string]any) (int, string) {
			return 200, r
		})
		err := c.SendHTML(context.Background(), "42", "x")
		srv.Close()
		if !errors.Is(err, ErrChatGone) {
			t.Fatalf("response %s should classify as gone, got %v", r, err)
		}
	}
}

func TestSend_OtherFailureIsNotGone(t *testing.T) {
	c, srv := fakeBotAPI(t, func(method string, body map[string]any) (int, string) {
		return 200, `{"ok":false,"error_code":429,"description":"Too Many Requests"}`
	})
	defer srv.Close()

	err := c.SendHTML(context.Background(), "42", "x")
	if err == nil || errors.Is(err, ErrChatGone) {
		t.Fatalf("429 must fail without gone classification, got %v", err)
	}
}

func TestGetUpdates_ParsesMessages(t *testing.T) {
	c, srv := fakeBotAPI(t, func(method string, body map[string]any) (int, string) {
		if method != "getUpdates" {
			t.Fatalf("unexpected method %s", method)
		}
		return 200, `{"ok":true,"result":[
			{"update_id":7,"message":{"text":"/start","chat":{"id":42,"title":"ops","type":"group"}}}
		]}`
	})
	defer srv.Close()

	ups, err := c.GetUpdates(context.Background(), 0, 5*time.Second)
	if err != nil {
		t.Fatalf("getUpdates: %v", err)
	}
	if len(ups) != 1 || ups[0].UpdateID != 7 {
		t.Fatalf("updates wrong: %+v", ups)
	}
	if ups[0].Message == nil || ups[0].Message.Chat.ID != 42 || ups[0].Message.Text != "/start" {
		t.Fatalf("message wrong: %+v", ups[0].Message)
	}
}

func TestChatIDString(t *testing.T) {
	if ChatIDString(-100123) != "-100123" {
		t.Fatalf("chat id formatting wrong")
	}
}
