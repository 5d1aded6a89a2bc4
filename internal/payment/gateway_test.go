package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateway(t *testing.T) {
	g, err := NewGateway("simulated")
	require.NoError(t, err)
	require.IsType(t, &SimulatedGateway{}, g)

	g, err = NewGateway("")
	require.NoError(t, err)
	require.NotNil(t, g)

	_, err = NewGateway("stripe")
	require.Error(t, err)
}

func TestSimulatedCharge(t *testing.T) {
	g := &SimulatedGateway{}
	ctx := context.Background()

	res, err := g.Charge(ctx, "membership_5", 4900, "USD")
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionRef)

	_, err = g.Charge(ctx, "membership_5", 4999, "USD")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.True(t, gwErr.Retryable)

	_, err = g.Charge(ctx, "membership_5", 4913, "USD")
	require.ErrorAs(t, err, &gwErr)
	assert.False(t, gwErr.Retryable)
}

func TestSimulatedChargeHonoursContext(t *testing.T) {
	g := &SimulatedGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, "membership_5", 4900, "USD")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedRefund(t *testing.T) {
	g := &SimulatedGateway{}
	ctx := context.Background()

	require.NoError(t, g.Refund(ctx, "sim_ref", 1000))

	err := g.Refund(ctx, "", 1000)
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "unknown_transaction", gwErr.Code)
}
