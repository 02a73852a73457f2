package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/okunev/appwatch/internal/domain"
)

const (
	emojiAvailable   = "🟢"
	emojiUnavailable = "🔴"
)

// Message is the channel-neutral notification body. It is built once per
// event; each channel renders it with its own markup.
type Message struct {
	AppName          string
	AppID            string
	Available        bool
	Changes          []domain.ConfirmedChange
	AvailableRegions []domain.RegionLink
	Fields           domain.Fields
}

// FromEvent builds the message for a confirmed change event.
func FromEvent(ev *domain.ChangeEvent) Message {
	return Message{
		AppName:          ev.Name,
		AppID:            ev.AppID,
		Available:        ev.Available,
		Changes:          ev.Changes,
		AvailableRegions: ev.AvailableRegions,
		Fields:           ev.Fields,
	}
}

// markup abstracts the per-channel text decorations so the body is authored
// exactly once.
type markup struct {
	bold   func(s string) string
	link   func(text, url string) string
	escape func(s string) string
}

func (m Message) render(mk markup) string {
	status := "unavailable"
	emoji := emojiUnavailable
	if m.Available {
		status = "available"
		emoji = emojiAvailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (ID: %s)\n", emoji, mk.bold(mk.escape(m.AppName)), mk.escape(m.AppID))
	fmt.Fprintf(&b, "Status: %s\n", status)

	if len(m.Changes) > 0 {
		b.WriteString("Region changes:\n")
		for _, ch := range m.Changes {
			st := "unavailable"
			if ch.NewStatus {
				st = "available"
			}
			fmt.Fprintf(&b, "%s: %s\n", mk.escape(ch.Region), st)
		}
	}

	if len(m.AvailableRegions) > 0 {
		b.WriteString("\nAvailable in:\n")
		for _, rl := range m.AvailableRegions {
			b.WriteString(mk.link(mk.escape(rl.Region), rl.URL))
			b.WriteString("\n")
		}
	}

	if len(m.Fields) > 0 {
		b.WriteString("\n")
		for _, f := range m.Fields {
			fmt.Fprintf(&b, "%s: %s\n", mk.escape(f.Key), mk.escape(f.Value))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// HTML renders for channels that take HTML markup (telegram).
func (m Message) HTML() string {
	return m.render(markup{
		bold:   func(s string) string { return "<b>" + s + "</b>" },
		link:   func(text, url string) string { return fmt.Sprintf("<a href=\"%s\">%s</a>", url, text) },
		escape: html.EscapeString,
	})
}

// Markdown renders for channels that take markdown-ish text (webhooks).
func (m Message) Markdown() string {
	return m.render(markup{
		bold:   func(s string) string { return "*" + s + "*" },
		link:   func(text, url string) string { return fmt.Sprintf("[%s](%s)", text, url) },
		escape: func(s string) string { return s },
	})
}
