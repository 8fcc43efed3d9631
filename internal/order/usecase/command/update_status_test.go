package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/order/repository"
)

func TestUpdateStatus(t *testing.T) {
	t.Run("allows a valid transition", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 1, product, 1)
		handler := NewUpdateStatusHandler(repository.NewGormOrderRepository(db))

		updated, err := handler.Handle(context.Background(), UpdateStatusCommand{
			OrderID:   order.ID,
			Status:    domain.StatusConfirmed,
			Validated: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, updated.Status)
		require.NotEmpty(t, updated.StatusHistory)
		last := updated.StatusHistory[len(updated.StatusHistory)-1]
		assert.Equal(t, "Status changed from pending to confirmed", last.Note)
	})

	t.Run("rejects a skipped step when validated", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 1, product, 1)
		handler := NewUpdateStatusHandler(repository.NewGormOrderRepository(db))

		_, err := handler.Handle(context.Background(), UpdateStatusCommand{
			OrderID:   order.ID,
			Status:    domain.StatusDelivered,
			Validated: true,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		var current domain.Order
		require.NoError(t, db.First(&current, order.ID).Error)
		assert.Equal(t, domain.StatusPending, current.Status)
	})

	t.Run("override skips the state machine", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 1, product, 1)
		handler := NewUpdateStatusHandler(repository.NewGormOrderRepository(db))

		updated, err := handler.Handle(context.Background(), UpdateStatusCommand{
			OrderID: order.ID,
			Status:  domain.StatusDelivered,
			Note:    "Correcting a missed scan",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, updated.Status)
		last := updated.StatusHistory[len(updated.StatusHistory)-1]
		assert.Equal(t, "Correcting a missed scan", last.Note)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 1, product, 1)
		handler := NewUpdateStatusHandler(repository.NewGormOrderRepository(db))

		updated, err := handler.Handle(context.Background(), UpdateStatusCommand{
			OrderID:   order.ID,
			Status:    domain.StatusPending,
			Validated: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, updated.Status)

		var historyCount int64
		require.NoError(t, db.Model(&domain.StatusHistoryEntry{}).
			Where("order_id = ?", order.ID).Count(&historyCount).Error)
		assert.Equal(t, int64(1), historyCount)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 1, product, 1)
		handler := NewUpdateStatusHandler(repository.NewGormOrderRepository(db))

		_, err := handler.Handle(context.Background(), UpdateStatusCommand{
			OrderID: order.ID,
			Status:  "misplaced",
		})
		assert.Error(t, err)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Clay Teapot", 200, 5)
	order := placeTestOrder(t, db, 1, product, 1)
	handler := NewUpdatePaymentStatusHandler(repository.NewGormOrderRepository(db))

	t.Run("sets a valid payment status", func(t *testing.T) {
		updated, err := handler.Handle(context.Background(), UpdatePaymentStatusCommand{
			OrderID:       order.ID,
			PaymentStatus: domain.PaymentPaid,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	})

	t.Run("rejects an unknown payment status without mutation", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), UpdatePaymentStatusCommand{
			OrderID:       order.ID,
			PaymentStatus: "settled",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)

		var current domain.Order
		require.NoError(t, db.First(&current, order.ID).Error)
		assert.Equal(t, domain.PaymentPaid, current.PaymentStatus)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), UpdatePaymentStatusCommand{
			OrderID:       999,
			PaymentStatus: domain.PaymentRefunded,
		})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}
