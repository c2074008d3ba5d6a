// Package whatsapp is a thin client for the WAHA sendText HTTP API. It owns
// address normalization: the engine hands it whatever the webhook delivered
// and the client shapes that into a chat id the gateway accepts.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	contentType    = "application/json"
	defaultSession = "nine-minutes-bot"
)

// Client sends text messages through a WAHA instance.
type Client struct {
	// ctx used only for http requests right now
	ctx     context.Context
	apiKey  string
	session string
	logger  *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// New creates a client for the WAHA instance at apiURL.
func New(ctx context.Context, logger *zap.Logger, apiURL, apiKey, session string) *Client {
	if session == "" {
		session = defaultSession
	}

	return &Client{
		ctx:     ctx,
		apiKey:  apiKey,
		session: session,
		logger:  logger,
		APIURL:  apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// Send delivers the text to the address's WhatsApp chat. The trailing blank
// lines match what the gateway has always been sent.
func (c *Client) Send(ctx context.Context, address, text string) error {
	number := NormalizeNumber(address)

	payload, err := json.Marshal(sendTextRequest{
		ChatID:  number + "@c.us",
		Text:    text + "\n\n",
		Session: c.session,
	})
	if err != nil {
		return fmt.Errorf("encoding sendText payload: %w", err)
	}

	url := c.APIURL + "/api/sendText"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building sendText request: %w", err)
	}

	req.Header.Set("Accept", contentType)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Debug("sending whatsapp message",
		zap.String("url", url),
		zap.String("chat_id", number+"@c.us"),
		zap.Int("text_length", len(text)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendText request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendText: bad status: %s", resp.Status)
	}

	return nil
}
