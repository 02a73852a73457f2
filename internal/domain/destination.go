package domain

// Channel identifiers for notification destinations.
const (
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
)

// Destination is an addressable notification target within a channel. For
// telegram the ID is the chat id, for webhooks it is the URL.
type Destination struct {
	Channel string `json:"channel"`
	ID      string `json:"id"`
	Label   string `json:"label"`
}

// Key uniquely identifies a destination across channels.
func (d Destination) Key() string {
	return d.Channel + "/" + d.ID
}
