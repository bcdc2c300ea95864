package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Leganyst/salon-core/internal/config"
)

// FCMClient sends through the Firebase Cloud Messaging HTTP v1 API.
type FCMClient struct {
	url   string
	token string
	http  *http.Client
}

func NewFCMClient(cfg config.PushConfig) *FCMClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	return &FCMClient{
		url:   fmt.Sprintf("%s/v1/projects/%s/messages:send", endpoint, cfg.ProjectID),
		token: strings.TrimSpace(cfg.AccessToken),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

func (c *FCMClient) Send(ctx context.Context, token string, msg Message) error {
	raw, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fcm returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
