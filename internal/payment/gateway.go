package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GatewayError is a charge or refund rejection from the provider. Retryable
// rejections (insufficient funds, provider hiccup) go through the backoff
// loop; hard declines (closed account, stolen card) fail immediately.
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway declined (%s): %s", e.Code, e.Message)
}

type ChargeResult struct {
	TransactionRef string
}

type Gateway interface {
	Charge(ctx context.Context, customerRef string, amountCents int64, currency string) (*ChargeResult, error)
	Refund(ctx context.Context, transactionRef string, amountCents int64) error
}

// NewGateway selects an implementation by the configured provider name.
func NewGateway(provider string) (Gateway, error) {
	switch strings.ToLower(provider) {
	case "simulated", "":
		return &SimulatedGateway{}, nil
	default:
		return nil, fmt.Errorf("unknown payment gateway provider %q", provider)
	}
}

// SimulatedGateway approves everything except two magic cent values used to
// exercise the failure paths in development: amounts ending in 99 cents get
// a retryable decline, amounts ending in 13 cents a hard decline.
type SimulatedGateway struct{}

func (g *SimulatedGateway) Charge(ctx context.Context, customerRef string, amountCents int64, currency string) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch amountCents % 100 {
	case 99:
		return nil, &GatewayError{Code: "insufficient_funds", Message: "insufficient funds", Retryable: true}
	case 13:
		return nil, &GatewayError{Code: "card_declined", Message: "card declined", Retryable: false}
	}

	return &ChargeResult{
		TransactionRef: fmt.Sprintf("sim_%s_%x", customerRef, time.Now().UnixNano()),
	}, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, transactionRef string, amountCents int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if transactionRef == "" {
		return &GatewayError{Code: "unknown_transaction", Message: "no such transaction", Retryable: false}
	}
	return nil
}
