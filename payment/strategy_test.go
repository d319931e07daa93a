package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

type fakeCharger struct {
	ok   bool
	note string
	err  error

	lastMethod models.PaymentMethod
}

func (f *fakeCharger) Charge(_ context.Context, method models.PaymentMethod, _ Request) (bool, string, error) {
	f.lastMethod = method
	return f.ok, f.note, f.err
}

func TestCODAlwaysSucceeds(t *testing.T) {
	strategy := NewCODStrategy()
	result, err := strategy.Pay(context.Background(), Request{OrderID: "abc", Amount: 550})
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.False(t, result.Pending)
}

func TestChargeStrategy(t *testing.T) {
	t.Run("successful charge", func(t *testing.T) {
		charger := &fakeCharger{ok: true}
		strategy := NewChargeStrategy(models.PaymentCard, charger)

		result, err := strategy.Pay(context.Background(), Request{OrderID: "abc", Amount: 100})
		require.NoError(t, err)
		assert.True(t, result.Succeeded)
		assert.Equal(t, models.PaymentCard, charger.lastMethod)
	})

	t.Run("declined charge is not an error", func(t *testing.T) {
		charger := &fakeCharger{ok: false, note: "insufficient funds"}
		strategy := NewChargeStrategy(models.PaymentUPI, charger)

		result, err := strategy.Pay(context.Background(), Request{OrderID: "abc", Amount: 100})
		require.NoError(t, err)
		assert.False(t, result.Succeeded)
		assert.Equal(t, "insufficient funds", result.FailureNote)
	})

	t.Run("transport failure surfaces as error", func(t *testing.T) {
		charger := &fakeCharger{err: errors.New("gateway timeout")}
		strategy := NewChargeStrategy(models.PaymentNetBanking, charger)

		_, err := strategy.Pay(context.Background(), Request{OrderID: "abc", Amount: 100})
		assert.Error(t, err)
	})
}

func TestDispatcher(t *testing.T) {
	charger := &fakeCharger{ok: true}
	dispatcher := NewDispatcher(
		NewCODStrategy(),
		NewChargeStrategy(models.PaymentCard, charger),
		NewChargeStrategy(models.PaymentUPI, charger),
	)

	t.Run("routes to registered strategy", func(t *testing.T) {
		result, err := dispatcher.Dispatch(context.Background(), models.PaymentCOD, Request{OrderID: "abc"})
		require.NoError(t, err)
		assert.True(t, result.Succeeded)

		_, err = dispatcher.Dispatch(context.Background(), models.PaymentCard, Request{OrderID: "abc"})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCard, charger.lastMethod)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := dispatcher.Dispatch(context.Background(), models.PaymentNetBanking, Request{OrderID: "abc"})
		assert.ErrorIs(t, err, ErrUnsupportedMethod)
	})

	t.Run("supports", func(t *testing.T) {
		assert.True(t, dispatcher.Supports(models.PaymentCOD))
		assert.False(t, dispatcher.Supports(models.PaymentHostedRedirect))
	})
}
