// Package notify tells customers about newly registered mail through the
// webhook configured in settings.
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

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

type SettingReader interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
}

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	Phone        string    `json:"phone"`
	Text         string    `json:"text"`
	CustomerID   string    `json:"customer_id"`
	FullName     string    `json:"full_name"`
	Sender       string    `json:"sender"`
	PhotoCount   int       `json:"photo_count"`
	MailID       string    `json:"mail_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type WebhookNotifier struct {
	Settings SettingReader
	Client   *http.Client
	Log      logger.Logger
	Timeout  time.Duration
}

func NewWebhookNotifier(settings SettingReader, lggr logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		Settings: settings,
		Client:   &http.Client{},
		Log:      lggr.Named("webhook"),
		Timeout:  10 * time.Second,
	}
}

// Handle is the queue subscriber for model.TopicMailRegistered.
func (n *WebhookNotifier) Handle(payload any) error {
	ev, ok := payload.(model.MailRegisteredEvent)
	if !ok {
		n.Log.Warnw("Ignoring unexpected payload", "type", fmt.Sprintf("%T", payload))
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.Timeout)
	defer cancel()
	return n.Notify(ctx, ev)
}

// Notify posts the event to the configured webhook. It is a no-op when no
// webhook URL is configured.
func (n *WebhookNotifier) Notify(ctx context.Context, ev model.MailRegisteredEvent) error {
	url, err := n.setting(ctx, model.SettingWebhookURL)
	if err != nil {
		return err
	}
	if url == "" {
		n.Log.Debugw("No webhook configured, skipping notification", "mail_id", ev.MailID)
		return nil
	}
	tmpl, err := n.setting(ctx, model.SettingNotificationTemplate)
	if err != nil {
		return err
	}
	if tmpl == "" {
		tmpl = DefaultTemplate
	}

	body, err := json.Marshal(WebhookPayload{
		Phone:        ev.Phone,
		Text:         RenderTemplate(tmpl, eventFields(ev)),
		CustomerID:   ev.CustomerCode,
		FullName:     ev.FullName,
		Sender:       ev.Sender,
		PhotoCount:   ev.PhotoCount,
		MailID:       ev.MailID.String(),
		RegisteredAt: ev.CreatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	n.Log.Infow("Notified customer", "mail_id", ev.MailID, "customer_id", ev.CustomerCode)
	return nil
}

func (n *WebhookNotifier) setting(ctx context.Context, key string) (string, error) {
	s, err := n.Settings.Get(ctx, key)
	if appErrors.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return strings.TrimSpace(s.StringValue()), nil
}
