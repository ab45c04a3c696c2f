package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNoWebhookURL is returned when the webhook destination was never configured.
var ErrNoWebhookURL = errors.New("webhook url is empty")

// Webhook posts the message as JSON to a chat webhook.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{url: strings.TrimSpace(url), client: client}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Announce(ctx context.Context, msg Message) error {
	if w.url == "" {
		return &NotifyError{Channel: w.Name(), Err: ErrNoWebhookURL}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return &NotifyError{Channel: w.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return &NotifyError{Channel: w.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return &NotifyError{Channel: w.Name(), Err: err}
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode/100 != 2 {
		return &NotifyError{
			Channel:    w.Name(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}
	return nil
}
