package notification

import (
	"context"

	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
)

// Notifier is an outbound notification channel. Implementations must be
// best-effort: delivery failures are reported as errors but callers treat
// them as fire-and-forget relative to state transitions.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Recipient carries the resolved contact details for a member.
type Recipient struct {
	Name  string
	Email string
	Phone string
}

// Manager fans a notification out to email and, when a phone number is
// present, SMS. Channel failures are logged and swallowed.
type Manager struct {
	email Notifier
	sms   Notifier
}

func NewManager(email, sms Notifier) *Manager {
	return &Manager{email: email, sms: sms}
}

func (m *Manager) Notify(ctx context.Context, to Recipient, subject, body string) {
	if m.email != nil && to.Email != "" {
		if err := m.email.Send(ctx, to.Email, subject, body); err != nil {
			logger.Error("Email notification failed", "recipient", to.Email, "subject", subject, "err", err)
			metrics.RecordNotification("email", "failed")
		}
	}

	if m.sms != nil && to.Phone != "" {
		if err := m.sms.Send(ctx, to.Phone, subject, body); err != nil {
			logger.Error("SMS notification failed", "recipient", to.Phone, "err", err)
			metrics.RecordNotification("sms", "failed")
		}
	}
}
