// internal/services/notify/service_test.go
package notify

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar-workers/internal/common/config"
	"bazaar-workers/internal/models"
)

type fakeSMS struct {
	inputs []*sns.PublishInput
}

func (f *fakeSMS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, nil
}

type fakeEmail struct {
	inputs []*ses.SendEmailInput
}

func (f *fakeEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

func notifyConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.SNS.Enabled = true
	cfg.SNS.TopicARN = "arn:aws:sns:ap-south-1:111122223333:stock-alerts"
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "alerts@example.com"
	cfg.Email.ToEmail = "vendor@example.com"
	cfg.CooldownSeconds = 3600
	return cfg
}

func TestLowStockAlertSendsBothChannels(t *testing.T) {
	sms := &fakeSMS{}
	email := &fakeEmail{}
	svc := New(notifyConfig(), sms, email, nil, nil)

	sent, err := svc.LowStockAlert(context.Background(), models.Product{
		ID: 1, Name: "Laptop", StockQuantity: 1, ReorderThreshold: 2,
	})
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, sms.inputs, 1)
	assert.Contains(t, *sms.inputs[0].Message, "Laptop is down to 1 units")
	require.Len(t, email.inputs, 1)
	assert.Equal(t, "alerts@example.com", *email.inputs[0].Source)
}

func TestLowStockAlertCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sms := &fakeSMS{}
	svc := New(notifyConfig(), sms, nil, client, nil)
	product := models.Product{ID: 1, Name: "Laptop", StockQuantity: 1, ReorderThreshold: 2}

	sent, err := svc.LowStockAlert(context.Background(), product)
	require.NoError(t, err)
	assert.True(t, sent)

	// Second alert inside the window is suppressed.
	sent, err = svc.LowStockAlert(context.Background(), product)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, sms.inputs, 1)

	// A different product has its own cooldown slot.
	sent, err = svc.LowStockAlert(context.Background(), models.Product{ID: 2, Name: "Mouse", StockQuantity: 2, ReorderThreshold: 5})
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestPaymentReminder(t *testing.T) {
	sms := &fakeSMS{}
	svc := New(notifyConfig(), sms, nil, nil, nil)

	err := svc.PaymentReminder(context.Background(), models.Customer{
		ID: 4, Name: "Amit", Phone: "+919876543210",
	})
	require.NoError(t, err)

	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "+919876543210", *sms.inputs[0].PhoneNumber)
	assert.Contains(t, *sms.inputs[0].Message, "Dear Amit")
}

func TestPaymentReminderDisabledChannel(t *testing.T) {
	cfg := notifyConfig()
	cfg.SNS.Enabled = false
	svc := New(cfg, nil, nil, nil, nil)

	err := svc.PaymentReminder(context.Background(), models.Customer{Name: "Amit"})
	assert.Error(t, err)
}
