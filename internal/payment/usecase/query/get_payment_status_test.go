package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/order/domain"
	orderrepo "github.com/deshimart/commerce/internal/order/repository"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.StatusHistoryEntry{},
		&domain.OrderCounter{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestGetPaymentStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := orderrepo.NewGormOrderRepository(db)

	product := &catalogdomain.Product{
		Name:     "Clay Teapot",
		Slug:     "clay-teapot",
		SKU:      "SKU-teapot",
		Price:    200,
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	order := &domain.Order{
		CustomerID: 7,
		Items: []domain.OrderItem{{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  1,
			Subtotal:  200,
		}},
		PaymentMethod: domain.MethodSSLCommerz,
		PaymentStatus: domain.PaymentPending,
		Subtotal:      200,
		ShippingCost:  60,
		Total:         260,
		Status:        domain.StatusPending,
	}
	require.NoError(t, repo.Create(order))
	_, _, err := repo.MarkPaid(order.OrderNumber, "VAL-9")
	require.NoError(t, err)

	handler := NewGetPaymentStatusHandler(repo)

	t.Run("owner reads payment state", func(t *testing.T) {
		status, err := handler.Handle(context.Background(), GetPaymentStatusQuery{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, status.OrderNumber)
		assert.Equal(t, domain.MethodSSLCommerz, status.PaymentMethod)
		assert.Equal(t, domain.PaymentPaid, status.PaymentStatus)
		assert.Equal(t, "VAL-9", status.TransactionID)
		assert.Equal(t, 260.0, status.Total)
	})

	t.Run("other customer is refused", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), GetPaymentStatusQuery{
			OrderID:   order.ID,
			ActorID:   8,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), GetPaymentStatusQuery{
			OrderID:   999,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}
