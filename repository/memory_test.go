package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

func TestRedeemOnceNeverExceedsLimit(t *testing.T) {
	repo := NewInMemoryCouponRepository(models.Coupon{
		Code:       "LASTONE",
		UsageLimit: 3,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidTo:    time.Now().Add(time.Hour),
		IsActive:   true,
	})
	ctx := context.Background()

	// Many concurrent redemptions of a 3-use coupon.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.RedeemOnce(ctx, "LASTONE")
			require.NoError(t, err)
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)

	coupon, err := repo.GetByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 3, coupon.UsedCount)
}

func TestMarkPaidOnlyTransitionsOnce(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	orderID, err := repo.Insert(ctx, &models.Order{
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.OrderPending,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	first, err := repo.MarkPaid(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkPaid(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, second, "an already-paid order must not transition again")

	order, err := repo.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.OrderStatus)
}

func TestMarkFailedOnlyTransitionsOnce(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	orderID, err := repo.Insert(ctx, &models.Order{
		PaymentStatus: models.PaymentPending,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	first, err := repo.MarkFailed(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkFailed(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, second, "an already-failed order must not transition again")

	order, err := repo.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
}

func TestExpirePendingLosesToCompletedPayment(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	orderID, err := repo.Insert(ctx, &models.Order{
		PaymentStatus: models.PaymentPending,
		PaymentMethod: models.PaymentHostedRedirect,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = repo.MarkPaid(ctx, orderID)
	require.NoError(t, err)

	expired, err := repo.ExpirePending(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, expired)

	order, err := repo.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
}

func TestResetPendingOnlyFromFailed(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	orderID, err := repo.Insert(ctx, &models.Order{
		PaymentStatus: models.PaymentPending,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	reset, err := repo.ResetPending(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, reset, "a pending order needs no reset")

	failed, err := repo.MarkFailed(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, failed)

	reset, err = repo.ResetPending(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, reset)

	order, err := repo.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
}
