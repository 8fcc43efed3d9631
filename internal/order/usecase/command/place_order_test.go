package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/order/repository"
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

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *catalogdomain.Product {
	slug := catalogdomain.Slugify(name)
	product := &catalogdomain.Product{
		Name:     name,
		Slug:     slug,
		SKU:      "SKU-" + slug,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newPlaceHandler(db *gorm.DB) *PlaceOrderHandler {
	return NewPlaceOrderHandler(
		repository.NewGormOrderRepository(db),
		catalogrepo.NewGormProductRepository(db),
		DefaultShippingPolicy(),
		nil,
	)
}

func placeCommand(customerID uint, items ...PlaceOrderItem) PlaceOrderCommand {
	return PlaceOrderCommand{
		CustomerID: customerID,
		Items:      items,
		ShippingAddress: domain.ShippingAddress{
			Name:  "Rahim Uddin",
			Phone: "01711111111",
			Email: "rahim@example.com",
			City:  "Dhaka",
		},
		PaymentMethod: domain.MethodCOD,
	}
}

func TestPlaceOrderPricing(t *testing.T) {
	t.Run("charges flat shipping below the threshold", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)

		order, err := newPlaceHandler(db).Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: product.ID,
			Quantity:  3,
		}))
		require.NoError(t, err)

		assert.Equal(t, 600.0, order.Subtotal)
		assert.Equal(t, 60.0, order.ShippingCost)
		assert.Equal(t, 660.0, order.Total)
		assert.Equal(t, domain.StatusPending, order.Status)
		assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

		var updated catalogdomain.Product
		require.NoError(t, db.First(&updated, product.ID).Error)
		assert.Equal(t, 2, updated.Stock)
		assert.Equal(t, 3, updated.SoldCount)
	})

	t.Run("ships free above the threshold", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Jamdani Saree", 750, 10)

		order, err := newPlaceHandler(db).Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: product.ID,
			Quantity:  2,
		}))
		require.NoError(t, err)

		assert.Equal(t, 1500.0, order.Subtotal)
		assert.Equal(t, 0.0, order.ShippingCost)
		assert.Equal(t, 1500.0, order.Total)
	})

	t.Run("still charges shipping at exactly the threshold", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Nakshi Kantha", 1000, 3)

		order, err := newPlaceHandler(db).Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: product.ID,
			Quantity:  1,
		}))
		require.NoError(t, err)

		assert.Equal(t, 60.0, order.ShippingCost)
		assert.Equal(t, 1060.0, order.Total)
	})

	t.Run("snapshots name and price into line items", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, "Clay Teapot", 200, 5)

		order, err := newPlaceHandler(db).Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: product.ID,
			Quantity:  2,
		}))
		require.NoError(t, err)

		require.Len(t, order.Items, 1)
		assert.Equal(t, "Clay Teapot", order.Items[0].Name)
		assert.Equal(t, 200.0, order.Items[0].Price)
		assert.Equal(t, 400.0, order.Items[0].Subtotal)

		// A later price change must not rewrite history
		require.NoError(t, db.Model(product).Update("price", 999).Error)
		var persisted domain.OrderItem
		require.NoError(t, db.First(&persisted, "order_id = ?", order.ID).Error)
		assert.Equal(t, 200.0, persisted.Price)
	})
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Clay Teapot", 200, 5)
	handler := newPlaceHandler(db)

	t.Run("rejects unknown payment method", func(t *testing.T) {
		cmd := placeCommand(1, PlaceOrderItem{ProductID: product.ID, Quantity: 1})
		cmd.PaymentMethod = "barter"

		_, err := handler.Handle(context.Background(), cmd)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported payment method")
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), placeCommand(1))
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: product.ID,
			Quantity:  0,
		}))
		assert.Error(t, err)
	})

	t.Run("rejects missing product", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), placeCommand(1, PlaceOrderItem{
			ProductID: 9999,
			Quantity:  1,
		}))
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Clay Teapot", 200, 2)
	handler := newPlaceHandler(db)

	_, err := handler.Handle(context.Background(), placeCommand(1, PlaceOrderItem{
		ProductID: product.ID,
		Quantity:  3,
	}))

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Clay Teapot", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Contains(t, err.Error(), "insufficient stock for Clay Teapot")

	// Nothing may be mutated on rejection
	var updated catalogdomain.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, 0, updated.SoldCount)

	var orderCount int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestPlaceOrderMultiItemRollback(t *testing.T) {
	db := setupTestDB(t)
	teapot := seedProduct(t, db, "Clay Teapot", 200, 5)
	saree := seedProduct(t, db, "Jamdani Saree", 750, 1)
	handler := newPlaceHandler(db)

	_, err := handler.Handle(context.Background(), placeCommand(1,
		PlaceOrderItem{ProductID: teapot.ID, Quantity: 2},
		PlaceOrderItem{ProductID: saree.ID, Quantity: 3},
	))

	assert.True(t, domain.IsInsufficientStock(err))

	// A rejected order must leave every item untouched
	var updated catalogdomain.Product
	require.NoError(t, db.First(&updated, teapot.ID).Error)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, 0, updated.SoldCount)
}

func TestPlaceOrderNumberFormat(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Clay Teapot", 200, 10)
	handler := newPlaceHandler(db)

	first, err := handler.Handle(context.Background(), placeCommand(1, PlaceOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := handler.Handle(context.Background(), placeCommand(1, PlaceOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.OrderNumber, "DE"))
	assert.Len(t, first.OrderNumber, 14)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, "0001", first.OrderNumber[10:])
	assert.Equal(t, "0002", second.OrderNumber[10:])
}

// fakeProducts serves a single product without a database
type fakeProducts struct {
	catalogdomain.ProductRepository
	product catalogdomain.Product
}

func (f *fakeProducts) FindByID(id uint) (*catalogdomain.Product, error) {
	if id != f.product.ID {
		return nil, catalogdomain.ErrNotFound
	}
	p := f.product
	return &p, nil
}

// fakeOrders applies the conditional decrement under a lock, standing in for
// the database's row-level atomicity
type fakeOrders struct {
	domain.OrderRepository
	mu      sync.Mutex
	stock   int
	created int
}

func (f *fakeOrders) Create(order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range order.Items {
		if f.stock < item.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Available:   f.stock,
				Requested:   item.Quantity,
			}
		}
	}
	for _, item := range order.Items {
		f.stock -= item.Quantity
	}
	f.created++
	order.OrderNumber = "DE000000000001"
	return nil
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	products := &fakeProducts{product: catalogdomain.Product{
		ID:    1,
		Name:  "Clay Teapot",
		Price: 200,
		Stock: 1,
	}}
	orders := &fakeOrders{stock: 1}
	handler := NewPlaceOrderHandler(orders, products, DefaultShippingPolicy(), nil)

	const buyers = 20
	var wg sync.WaitGroup
	errs := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = handler.Handle(context.Background(), placeCommand(uint(i+1), PlaceOrderItem{
				ProductID: 1,
				Quantity:  1,
			}))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, domain.IsInsufficientStock(err), "unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, orders.created)
	assert.Equal(t, 0, orders.stock)
}
