package telegram

import (
	"strings"
	"time"

	"github.com/saharsb963/chess/internal/services"
)

// editFloor is the minimum interval between successive edits of one game's
// board message. The wait is per game and blocks only the interaction that
// triggered it.
const editFloor = 500 * time.Millisecond

// Gateway publishes board snapshots to the chat: a new message on the first
// publish, an in-place edit afterwards.
type Gateway struct {
	client   *Client
	interval time.Duration
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client, interval: editFloor}
}

func (gw *Gateway) Publish(view *services.GameView) (int64, time.Time, error) {
	text := statusText(view)
	markup := BoardKeyboard(view)

	if view.MessageID == 0 {
		msgID, err := gw.client.SendMessage(view.ChatID, text, "HTML", markup)
		if err != nil {
			return 0, time.Time{}, err
		}
		return msgID, time.Now(), nil
	}

	if wait := gw.interval - time.Since(view.LastRender); wait > 0 {
		time.Sleep(wait)
	}

	err := gw.client.EditMessageText(view.ChatID, view.MessageID, text, "HTML", markup)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		// Editing to identical content is a no-op, not a failure.
		err = nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return view.MessageID, time.Now(), nil
}
