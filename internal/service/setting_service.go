package service

import (
	"context"
	"strings"

	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
)

// DefaultSettings are created on server start and by `mailctl seed` when missing.
var DefaultSettings = []model.Setting{
	{Key: model.SettingWebhookURL, Description: strPtr("TimelinesAI inbound webhook used to notify customers of new mail")},
	{Key: model.SettingNotificationTemplate, Description: strPtr("Notification text; placeholders {full_name} {customer_id} {sender} {photo_count}")},
}

type SettingService struct {
	SettingRepo repository.SettingRepositoryInterface
}

func (s *SettingService) List(ctx context.Context) ([]model.Setting, error) {
	return s.SettingRepo.List(ctx)
}

// Update sets the value of an existing setting. Webhook URLs must be valid
// URLs; an empty value clears the setting.
func (s *SettingService) Update(ctx context.Context, key, value string) (*model.Setting, error) {
	value = strings.TrimSpace(value)
	if key == model.SettingWebhookURL && value != "" {
		in := struct {
			Value string `json:"value" validate:"url"`
		}{value}
		if err := validateStruct(in); err != nil {
			return nil, err
		}
	}
	if err := s.SettingRepo.UpdateValue(ctx, key, value); err != nil {
		return nil, err
	}
	return s.SettingRepo.Get(ctx, key)
}

// Seed inserts DefaultSettings that are not present yet.
func (s *SettingService) Seed(ctx context.Context) error {
	for _, d := range DefaultSettings {
		d := d
		if err := s.SettingRepo.Ensure(ctx, &d); err != nil {
			return err
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
