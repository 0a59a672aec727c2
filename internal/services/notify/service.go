// internal/services/notify/service.go

// Package notify sends vendor-facing alerts: low-stock warnings over
// SNS/SES and payment reminder texts. A Redis cooldown keeps repeated
// sweeps from re-alerting the same product every few minutes.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"

	"bazaar-workers/internal/common/config"
	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/common/metrics"
	"bazaar-workers/internal/models"
)

const cooldownKeyPrefix = "notify:lowstock:"

// SMSPublisher publishes one SMS/topic message.
type SMSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// EmailSender sends one email.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Service struct {
	cfg      config.NotificationConfig
	sms      SMSPublisher
	email    EmailSender
	cooldown *redis.Client
	log      logger.Logger
}

func New(cfg config.NotificationConfig, sms SMSPublisher, email EmailSender, cooldown *redis.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{cfg: cfg, sms: sms, email: email, cooldown: cooldown, log: log}
}

// LowStockAlert notifies the vendor that a product needs reordering, on
// every enabled channel. Products already alerted within the cooldown
// window are skipped; the skip is reported as (false, nil).
func (s *Service) LowStockAlert(ctx context.Context, product models.Product) (bool, error) {
	ok, err := s.claimCooldown(ctx, product.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Debug("low stock alert suppressed by cooldown", map[string]interface{}{
			"product_id": product.ID,
		})
		return false, nil
	}

	subject := fmt.Sprintf("Low stock: %s", product.Name)
	body := fmt.Sprintf("%s is down to %d units (reorder threshold %d). Time to restock.",
		product.Name, product.StockQuantity, product.ReorderThreshold)

	if s.cfg.SNS.Enabled && s.sms != nil {
		_, err := s.sms.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(s.cfg.SNS.TopicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(body),
		})
		if err != nil {
			return false, apperrors.NewNotificationSendFailedError("sns", err)
		}
	}

	if s.cfg.Email.Enabled && s.email != nil {
		if err := s.sendEmail(ctx, subject, body); err != nil {
			return false, err
		}
	}

	metrics.LowStockAlertsSent.Inc()
	s.log.Info("low stock alert sent", map[string]interface{}{
		"product_id": product.ID,
		"stock":      product.StockQuantity,
	})
	return true, nil
}

// PaymentReminder sends a reminder text about pending dues to a customer's
// phone via SNS.
func (s *Service) PaymentReminder(ctx context.Context, customer models.Customer) error {
	if !s.cfg.SNS.Enabled || s.sms == nil {
		return apperrors.NewNotificationSendFailedError("sns", fmt.Errorf("sms channel disabled"))
	}

	message := fmt.Sprintf("Dear %s, this is a friendly reminder about your pending payment. "+
		"Please clear your dues at your earliest convenience. Thank you!", customer.Name)

	_, err := s.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(customer.Phone),
		Message:     aws.String(message),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err)
	}

	s.log.Info("payment reminder sent", map[string]interface{}{"customer_id": customer.ID})
	return nil
}

func (s *Service) sendEmail(ctx context.Context, subject, body string) error {
	_, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{s.cfg.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("ses", err)
	}
	return nil
}

// claimCooldown atomically claims the alert slot for a product. Returns
// false when another sweep already alerted within the window. Without a
// Redis client every alert goes through.
func (s *Service) claimCooldown(ctx context.Context, productID int) (bool, error) {
	if s.cooldown == nil {
		return true, nil
	}
	window := time.Duration(s.cfg.CooldownSeconds) * time.Second
	if window <= 0 {
		window = time.Hour
	}
	key := fmt.Sprintf("%s%d", cooldownKeyPrefix, productID)
	ok, err := s.cooldown.SetNX(ctx, key, "1", window).Result()
	if err != nil {
		return false, apperrors.NewNotificationSendFailedError("cooldown", err)
	}
	return ok, nil
}
