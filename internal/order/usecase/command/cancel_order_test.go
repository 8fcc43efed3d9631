package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/order/repository"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

func placeTestOrder(t *testing.T, db *gorm.DB, customerID uint, product *catalogdomain.Product, qty int) *domain.Order {
	order, err := newPlaceHandler(db).Handle(context.Background(), placeCommand(customerID, PlaceOrderItem{
		ProductID: product.ID,
		Quantity:  qty,
	}))
	require.NoError(t, err)
	return order
}

func TestCancelOrder(t *testing.T) {
	t.Run("owner cancels and stock is restored", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 7, product, 3)
		handler := NewCancelOrderHandler(repository.NewGormOrderRepository(db), nil)

		cancelled, err := handler.Handle(context.Background(), CancelOrderCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
			Reason:    "Ordered by mistake",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)

		var restored catalogdomain.Product
		require.NoError(t, db.First(&restored, product.ID).Error)
		assert.Equal(t, 5, restored.Stock)
		assert.Equal(t, 0, restored.SoldCount)
	})

	t.Run("admin cancels any order", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 7, product, 1)
		handler := NewCancelOrderHandler(repository.NewGormOrderRepository(db), nil)

		cancelled, err := handler.Handle(context.Background(), CancelOrderCommand{
			OrderID:   order.ID,
			ActorID:   1,
			ActorRole: userdomain.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	})

	t.Run("rejects another customer", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 7, product, 2)
		handler := NewCancelOrderHandler(repository.NewGormOrderRepository(db), nil)

		_, err := handler.Handle(context.Background(), CancelOrderCommand{
			OrderID:   order.ID,
			ActorID:   8,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		// Order and stock must be untouched
		var current domain.Order
		require.NoError(t, db.First(&current, order.ID).Error)
		assert.Equal(t, domain.StatusPending, current.Status)

		var stock catalogdomain.Product
		require.NoError(t, db.First(&stock, product.ID).Error)
		assert.Equal(t, 3, stock.Stock)
	})

	t.Run("rejects once shipped", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)
		order := placeTestOrder(t, db, 7, product, 1)
		orders := repository.NewGormOrderRepository(db)
		_, err := orders.UpdateStatus(order.ID, domain.StatusShipped, "")
		require.NoError(t, err)

		handler := NewCancelOrderHandler(orders, nil)
		_, err = handler.Handle(context.Background(), CancelOrderCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("missing order", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewCancelOrderHandler(repository.NewGormOrderRepository(db), nil)

		_, err := handler.Handle(context.Background(), CancelOrderCommand{
			OrderID:   999,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}
