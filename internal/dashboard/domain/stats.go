package domain

import (
	"time"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	orderdomain "github.com/deshimart/commerce/internal/order/domain"
)

// Reporting periods
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodStart returns the start time for a reporting period, defaulting to
// month for unknown values
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// TopProduct is one row of the best-selling products report
type TopProduct struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity_sold"`
}

// DailySales is one day of the paid-sales series
type DailySales struct {
	Date   string  `json:"date"`
	Orders int64   `json:"orders"`
	Total  float64 `json:"total"`
}

// Stats is the admin dashboard payload for one reporting period
type Stats struct {
	Period           string                  `json:"period"`
	TotalOrders      int64                   `json:"total_orders"`
	Revenue          float64                 `json:"revenue"`
	OrdersByStatus   map[string]int64        `json:"orders_by_status"`
	NewCustomers     int64                   `json:"new_customers"`
	TopProducts      []TopProduct            `json:"top_products"`
	LowStockProducts []catalogdomain.Product `json:"low_stock_products"`
	RecentOrders     []orderdomain.Order     `json:"recent_orders"`
	DailySales       []DailySales            `json:"daily_sales"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// StatsRepository defines the read-only aggregation queries behind the
// dashboard
type StatsRepository interface {
	OrderCount(since time.Time) (int64, error)
	Revenue(since time.Time) (float64, error)
	OrdersByStatus(since time.Time) (map[string]int64, error)
	TopProducts(since time.Time, limit int) ([]TopProduct, error)
	RecentOrders(limit int) ([]orderdomain.Order, error)
	DailySales(days int) ([]DailySales, error)
}
