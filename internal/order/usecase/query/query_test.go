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
	"github.com/deshimart/commerce/internal/order/repository"
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

// seedOrders creates a product and count pending orders for the customer,
// returning the repository and the created order IDs.
func seedOrders(t *testing.T, db *gorm.DB, customerID uint, count int) (*repository.GormOrderRepository, []uint) {
	repo := repository.NewGormOrderRepository(db)

	product := &catalogdomain.Product{
		Name:     "Clay Teapot",
		Slug:     catalogdomain.Slugify("Clay Teapot"),
		SKU:      "SKU-teapot",
		Price:    200,
		Stock:    100,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	ids := make([]uint, 0, count)
	for i := 0; i < count; i++ {
		order := &domain.Order{
			CustomerID: customerID,
			Items: []domain.OrderItem{{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  1,
				Subtotal:  product.Price,
			}},
			PaymentMethod: domain.MethodCOD,
			PaymentStatus: domain.PaymentPending,
			Subtotal:      product.Price,
			ShippingCost:  60,
			Total:         260,
			Status:        domain.StatusPending,
		}
		require.NoError(t, repo.Create(order))
		ids = append(ids, order.ID)
	}
	return repo, ids
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB(t)
	repo, ids := seedOrders(t, db, 7, 1)
	handler := NewGetOrderHandler(repo)

	t.Run("owner sees own order", func(t *testing.T) {
		order, err := handler.Handle(context.Background(), GetOrderQuery{
			OrderID:   ids[0],
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, ids[0], order.ID)
		assert.NotEmpty(t, order.Items)
		assert.NotEmpty(t, order.StatusHistory)
	})

	t.Run("admin sees any order", func(t *testing.T) {
		order, err := handler.Handle(context.Background(), GetOrderQuery{
			OrderID:   ids[0],
			ActorID:   99,
			ActorRole: userdomain.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, ids[0], order.ID)
	})

	t.Run("other customer is refused", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), GetOrderQuery{
			OrderID:   ids[0],
			ActorID:   8,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), GetOrderQuery{
			OrderID:   999,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestListOrders(t *testing.T) {
	db := setupTestDB(t)
	repo, _ := seedOrders(t, db, 7, 12)
	otherIDs := seedOrdersExisting(t, db, repo, 8, 3)
	handler := NewListOrdersHandler(repo)

	t.Run("customer is scoped to own orders", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListOrdersQuery{
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), page.Total)
		assert.Len(t, page.Orders, 10)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 2, page.TotalPages)
		for _, order := range page.Orders {
			assert.Equal(t, uint(7), order.CustomerID)
		}
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListOrdersQuery{
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
			Page:      2,
		})
		require.NoError(t, err)
		assert.Len(t, page.Orders, 2)
		assert.Equal(t, 2, page.Page)
	})

	t.Run("admin sees every customer", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListOrdersQuery{
			ActorID:   1,
			ActorRole: userdomain.RoleAdmin,
			Limit:     100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(15), page.Total)
		assert.Len(t, page.Orders, 15)
	})

	t.Run("status filter applies", func(t *testing.T) {
		_, err := repo.UpdateStatus(otherIDs[0], domain.StatusConfirmed, "")
		require.NoError(t, err)

		page, err := handler.Handle(context.Background(), ListOrdersQuery{
			ActorID:   1,
			ActorRole: userdomain.RoleAdmin,
			Status:    domain.StatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Orders, 1)
		assert.Equal(t, otherIDs[0], page.Orders[0].ID)
	})

	t.Run("oversized limit falls back to the default", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListOrdersQuery{
			ActorID:   1,
			ActorRole: userdomain.RoleAdmin,
			Limit:     500,
		})
		require.NoError(t, err)
		assert.Len(t, page.Orders, 10)
	})
}

// seedOrdersExisting adds count orders for a customer reusing an existing
// repository and its product rows.
func seedOrdersExisting(t *testing.T, db *gorm.DB, repo *repository.GormOrderRepository, customerID uint, count int) []uint {
	var product catalogdomain.Product
	require.NoError(t, db.First(&product).Error)

	ids := make([]uint, 0, count)
	for i := 0; i < count; i++ {
		order := &domain.Order{
			CustomerID: customerID,
			Items: []domain.OrderItem{{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  1,
				Subtotal:  product.Price,
			}},
			PaymentMethod: domain.MethodCOD,
			PaymentStatus: domain.PaymentPending,
			Subtotal:      product.Price,
			ShippingCost:  60,
			Total:         260,
			Status:        domain.StatusPending,
		}
		require.NoError(t, repo.Create(order))
		ids = append(ids, order.ID)
	}
	return ids
}
