package notification

import (
	"context"

	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
)

// LogSMSSender stands in for a real SMS provider. It records the message in
// the application log so the dispatch path stays exercised in development.
type LogSMSSender struct{}

func NewLogSMSSender() *LogSMSSender {
	return &LogSMSSender{}
}

func (s *LogSMSSender) Send(ctx context.Context, recipient, subject, body string) error {
	logger.Info("SMS dispatched", "to", recipient, "subject", subject)
	metrics.RecordNotification("sms", "sent")
	return nil
}
