package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// pushMessage is the Expo push payload
type pushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
	Sound string            `json:"sound"`
}

// ExpoNotifier dispatches push notifications through the Expo push service.
// Delivery is best effort: the response status is logged and nothing more.
type ExpoNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewExpoNotifier creates a push notifier using the provided config
func NewExpoNotifier(cfg *config.PushConfig, logger *zap.Logger) *ExpoNotifier {
	return &ExpoNotifier{
		url:    cfg.ExpoURL,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Push sends one notification to the device token
func (n *ExpoNotifier) Push(ctx context.Context, deviceToken, title, body, meetingID string) error {
	payload := pushMessage{
		To:    deviceToken,
		Title: title,
		Body:  body,
		Data:  map[string]string{"meeting_id": meetingID},
		Sound: "default",
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if n.logger != nil {
		n.logger.Info("📬 Push notification sent",
			zap.String("meeting_id", meetingID),
			zap.Int("status", resp.StatusCode),
		)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("expo push returned status %d", resp.StatusCode)
	}
	return nil
}
