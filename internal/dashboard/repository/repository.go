package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/deshimart/commerce/internal/dashboard/domain"
	orderdomain "github.com/deshimart/commerce/internal/order/domain"
)

// GormStatsRepository implements domain.StatsRepository with gorm
// aggregations over the order and catalog tables
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new stats repository
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// OrderCount returns the number of orders placed since the given time
func (r *GormStatsRepository) OrderCount(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&orderdomain.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// Revenue sums the totals of paid orders placed since the given time
func (r *GormStatsRepository) Revenue(since time.Time) (float64, error) {
	var revenue float64
	err := r.db.Model(&orderdomain.Order{}).
		Where("created_at >= ? AND payment_status = ?", since, orderdomain.PaymentPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	return revenue, err
}

// OrdersByStatus counts orders per fulfillment status since the given time
func (r *GormStatsRepository) OrdersByStatus(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&orderdomain.Order{}).
		Where("created_at >= ?", since).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	return byStatus, nil
}

// TopProducts returns the best-selling products by quantity since the given
// time
func (r *GormStatsRepository) TopProducts(since time.Time, limit int) ([]domain.TopProduct, error) {
	var top []domain.TopProduct
	err := r.db.Model(&orderdomain.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.status <> ?", since, orderdomain.StatusCancelled).
		Select("order_items.product_id as product_id, order_items.name as name, SUM(order_items.quantity) as quantity_sold").
		Group("order_items.product_id, order_items.name").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}

// RecentOrders returns the most recently placed orders
func (r *GormStatsRepository) RecentOrders(limit int) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := r.db.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// DailySales returns the paid-sales series for the last n days, oldest day
// first. Days without sales appear with zero values.
func (r *GormStatsRepository) DailySales(days int) ([]domain.DailySales, error) {
	since := time.Now().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var orders []orderdomain.Order
	err := r.db.Model(&orderdomain.Order{}).
		Where("created_at >= ? AND payment_status = ?", since, orderdomain.PaymentPaid).
		Select("created_at, total").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	// Bucket in Go rather than SQL so the query stays portable across
	// postgres and the sqlite test driver
	byDay := make(map[string]*domain.DailySales, days)
	series := make([]domain.DailySales, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = domain.DailySales{Date: date}
		byDay[date] = &series[i]
	}

	for _, order := range orders {
		if day, ok := byDay[order.CreatedAt.Format("2006-01-02")]; ok {
			day.Orders++
			day.Total += order.Total
		}
	}

	return series, nil
}
