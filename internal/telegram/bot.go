package telegram

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Bot ties the client and the update handler to a webhook endpoint. Each
// update is dispatched on its own goroutine; per-session serialization is the
// session engine's job.
type Bot struct {
	client         *Client
	handler        *UpdateHandler
	webhookBaseURL string
	webhookSecret  string
	secret         string // path secret derived from the token
}

func NewBot(client *Client, handler *UpdateHandler, webhookBaseURL, webhookSecret string) *Bot {
	h := sha256.Sum256([]byte(client.token))
	return &Bot{
		client:         client,
		handler:        handler,
		webhookBaseURL: webhookBaseURL,
		webhookSecret:  webhookSecret,
		secret:         fmt.Sprintf("%x", h[:16]),
	}
}

func (b *Bot) Start() error {
	url := fmt.Sprintf("%s/webhook/bot/%s", b.webhookBaseURL, b.secret)
	if err := b.client.SetWebhook(url, b.webhookSecret); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	log.Printf("[Bot] webhook registered: %s", url)
	return nil
}

func (b *Bot) Stop() {
	if err := b.client.DeleteWebhook(); err != nil {
		log.Printf("[Bot] delete webhook: %v", err)
	}
}

func (b *Bot) HandleWebhook(c *gin.Context) {
	if c.Param("secret") != b.secret {
		c.Status(http.StatusNotFound)
		return
	}

	if b.webhookSecret != "" {
		if c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != b.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go b.handler.Handle(upd)

	c.Status(http.StatusOK)
}
