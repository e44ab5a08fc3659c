package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

func TestSettingSeedAndUpdate(t *testing.T) {
	repo := NewMockSettingRepo()
	svc := &service.SettingService{SettingRepo: repo}
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.SettingNotificationTemplate, all[0].Key)
	assert.Equal(t, model.SettingWebhookURL, all[1].Key)

	s, err := svc.Update(ctx, model.SettingWebhookURL, "  https://app.timelines.ai/integrations/webhook/abc ")
	require.NoError(t, err)
	assert.Equal(t, "https://app.timelines.ai/integrations/webhook/abc", s.StringValue())

	require.NoError(t, svc.Seed(ctx))
	s, err = repo.Get(ctx, model.SettingWebhookURL)
	require.NoError(t, err)
	assert.NotEmpty(t, s.StringValue(), "seeding keeps existing values")

	s, err = svc.Update(ctx, model.SettingWebhookURL, "")
	require.NoError(t, err)
	assert.Empty(t, s.StringValue())
}

func TestSettingUpdateErrors(t *testing.T) {
	repo := NewMockSettingRepo()
	svc := &service.SettingService{SettingRepo: repo}
	require.NoError(t, svc.Seed(context.Background()))

	_, err := svc.Update(context.Background(), model.SettingWebhookURL, "not a url")
	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Update(context.Background(), "unknown_key", "x")
	assert.True(t, appErrors.IsNotFound(err))
}
