package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/saharalabs/helpline/internal/conversation"
	"github.com/saharalabs/helpline/pkg/logging"
)

const alertBodyTemplate = "The user %s is in a dire situation, please overlook"

// EmergencyAlerter pushes a fixed-destination warning to support staff. The
// WhatsApp channel is primary; email is sent additionally when configured.
type EmergencyAlerter struct {
	messenger conversation.ReplyMessenger
	email     EmailSender
	to        string
	from      string
	emailTo   string
	logger    *logging.Logger
}

// AlerterConfig holds the fixed alert destinations.
type AlerterConfig struct {
	// To is the staff WhatsApp address that receives alerts.
	To string
	// From is the WhatsApp address alerts are sent from.
	From string
	// EmailTo optionally receives a copy of every alert.
	EmailTo string
}

func NewEmergencyAlerter(messenger conversation.ReplyMessenger, email EmailSender, cfg AlerterConfig, logger *logging.Logger) *EmergencyAlerter {
	if logger == nil {
		logger = logging.Default()
	}
	return &EmergencyAlerter{
		messenger: messenger,
		email:     email,
		to:        cfg.To,
		from:      cfg.From,
		emailTo:   cfg.EmailTo,
		logger:    logger,
	}
}

// SendEmergencyAlert notifies staff about the user. Each configured channel
// is attempted independently; the combined error is returned for logging but
// callers treat delivery as best effort.
func (a *EmergencyAlerter) SendEmergencyAlert(ctx context.Context, userID string) error {
	body := fmt.Sprintf(alertBodyTemplate, userID)
	var errs []error

	if a.messenger != nil && a.to != "" {
		if err := a.messenger.SendReply(ctx, conversation.OutboundReply{
			To:   a.to,
			From: a.from,
			Body: body,
		}); err != nil {
			errs = append(errs, fmt.Errorf("notify: whatsapp alert failed: %w", err))
		} else {
			a.logger.Info("emergency alert sent", "user_id", userID, "to", a.to)
		}
	}

	if a.email != nil && a.emailTo != "" {
		if err := a.email.Send(ctx, EmailMessage{
			To:      a.emailTo,
			Subject: "Emergency alert: user needs urgent support",
			Body:    body,
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
