// internal/model/setting.go
package model

import "github.com/google/uuid"

// Well-known setting keys.
const (
	SettingWebhookURL           = "timelinesai_webhook_url"
	SettingNotificationTemplate = "mail_notification_template"
)

type Setting struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Value       *string   `db:"value" json:"value"`
	Description *string   `db:"description" json:"description"`
}

// StringValue returns the value or "" when unset.
func (s *Setting) StringValue() string {
	if s == nil || s.Value == nil {
		return ""
	}
	return *s.Value
}
