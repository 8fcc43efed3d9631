package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/dashboard/domain"
	dashboardrepo "github.com/deshimart/commerce/internal/dashboard/repository"
	orderdomain "github.com/deshimart/commerce/internal/order/domain"
	orderrepo "github.com/deshimart/commerce/internal/order/repository"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
	userrepo "github.com/deshimart/commerce/internal/user/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.StatusHistoryEntry{},
		&orderdomain.OrderCounter{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func seedDashboardData(t *testing.T, db *gorm.DB) {
	users := []userdomain.User{
		{Name: "Rahim Uddin", Email: "rahim@example.com", Password: "x", Role: userdomain.RoleCustomer},
		{Name: "Karim Mia", Email: "karim@example.com", Password: "x", Role: userdomain.RoleCustomer},
		{Name: "Back Office", Email: "admin@example.com", Password: "x", Role: userdomain.RoleAdmin},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}

	products := []catalogdomain.Product{
		{Name: "Clay Teapot", Slug: "clay-teapot", SKU: "SKU-teapot", Price: 200, Stock: 50, IsActive: true},
		{Name: "Jamdani Saree", Slug: "jamdani-saree", SKU: "SKU-jamdani", Price: 750, Stock: 3, IsActive: true},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	repo := orderrepo.NewGormOrderRepository(db)

	newOrder := func(customerID uint, product *catalogdomain.Product, qty int) *orderdomain.Order {
		subtotal := product.Price * float64(qty)
		order := &orderdomain.Order{
			CustomerID: customerID,
			Items: []orderdomain.OrderItem{{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  qty,
				Subtotal:  subtotal,
			}},
			PaymentMethod: orderdomain.MethodSSLCommerz,
			PaymentStatus: orderdomain.PaymentPending,
			Subtotal:      subtotal,
			Total:         subtotal,
			Status:        orderdomain.StatusPending,
		}
		require.NoError(t, repo.Create(order))
		return order
	}

	paid1 := newOrder(1, &products[0], 3) // 600, paid
	paid2 := newOrder(2, &products[1], 2) // 1500, paid
	newOrder(1, &products[0], 1)          // 200, pending
	cancelled := newOrder(2, &products[0], 4)

	_, _, err := repo.MarkPaid(paid1.OrderNumber, "VAL-1")
	require.NoError(t, err)
	_, _, err = repo.MarkPaid(paid2.OrderNumber, "VAL-2")
	require.NoError(t, err)
	require.NoError(t, repo.CancelAndRestore(cancelled, "test"))
}

func newStatsHandler(db *gorm.DB) *GetStatsHandler {
	return NewGetStatsHandler(
		dashboardrepo.NewGormStatsRepository(db),
		userrepo.NewGormUserRepository(db),
		catalogrepo.NewGormProductRepository(db),
		nil,
	)
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	seedDashboardData(t, db)
	handler := newStatsHandler(db)

	stats, err := handler.Handle(context.Background(), GetStatsQuery{Period: domain.PeriodMonth})
	require.NoError(t, err)

	assert.Equal(t, domain.PeriodMonth, stats.Period)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, 2100.0, stats.Revenue)
	assert.Equal(t, int64(2), stats.NewCustomers)

	assert.Equal(t, int64(2), stats.OrdersByStatus[orderdomain.StatusConfirmed])
	assert.Equal(t, int64(1), stats.OrdersByStatus[orderdomain.StatusPending])
	assert.Equal(t, int64(1), stats.OrdersByStatus[orderdomain.StatusCancelled])

	// Cancelled orders are excluded from the best-seller report
	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "Clay Teapot", stats.TopProducts[0].Name)
	assert.Equal(t, int64(4), stats.TopProducts[0].QuantitySold)
	assert.Equal(t, int64(2), stats.TopProducts[1].QuantitySold)

	require.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, "Jamdani Saree", stats.LowStockProducts[0].Name)

	assert.Len(t, stats.RecentOrders, 4)

	require.Len(t, stats.DailySales, 7)
	var seriesTotal float64
	var seriesOrders int64
	for _, day := range stats.DailySales {
		seriesTotal += day.Total
		seriesOrders += day.Orders
	}
	assert.Equal(t, 2100.0, seriesTotal)
	assert.Equal(t, int64(2), seriesOrders)

	assert.WithinDuration(t, time.Now(), stats.GeneratedAt, 5*time.Second)
}

func TestGetStatsDefaultsToMonth(t *testing.T) {
	db := setupTestDB(t)
	seedDashboardData(t, db)
	handler := newStatsHandler(db)

	stats, err := handler.Handle(context.Background(), GetStatsQuery{Period: "fortnight"})
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodMonth, stats.Period)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 5, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{domain.PeriodToday, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)},
		{domain.PeriodWeek, time.Date(2026, 5, 8, 13, 45, 0, 0, time.UTC)},
		{domain.PeriodMonth, time.Date(2026, 4, 15, 13, 45, 0, 0, time.UTC)},
		{domain.PeriodYear, time.Date(2025, 5, 15, 13, 45, 0, 0, time.UTC)},
		{"unknown", time.Date(2026, 4, 15, 13, 45, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.PeriodStart(tt.period, now))
		})
	}
}
