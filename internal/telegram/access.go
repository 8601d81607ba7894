package telegram

import "strings"

// AccessGate checks channel membership before any state mutation. With no
// channel configured the gate is disabled; once configured it fails closed,
// so any API error means not authorized.
type AccessGate struct {
	client  *Client
	channel string // e.g. "@mychannel"
}

func NewAccessGate(client *Client, channel string) *AccessGate {
	return &AccessGate{client: client, channel: channel}
}

func (g *AccessGate) IsAuthorized(telegramID int64) bool {
	if g.channel == "" {
		// No channel configured: the gate is disabled.
		return true
	}
	member, err := g.client.GetChatMember(g.channel, telegramID)
	if err != nil {
		return false
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

// ChannelURL is the public link used on the subscribe button.
func (g *AccessGate) ChannelURL() string {
	return "https://t.me/" + strings.TrimPrefix(g.channel, "@")
}
