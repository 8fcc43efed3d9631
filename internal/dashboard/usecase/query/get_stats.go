package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/dashboard/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
	"github.com/deshimart/commerce/pkg/logger"
)

const (
	lowStockThreshold = 10
	lowStockLimit     = 10
	topProductsLimit  = 10
	recentOrdersLimit = 5
	salesSeriesDays   = 7

	cacheTTL = time.Minute
)

// GetStatsQuery represents the query for dashboard statistics
type GetStatsQuery struct {
	Period string
}

// GetStatsHandler handles dashboard statistics queries. A nil cache disables
// caching.
type GetStatsHandler struct {
	stats    domain.StatsRepository
	users    userdomain.UserRepository
	products catalogdomain.ProductRepository
	cache    *redis.Client
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(
	stats domain.StatsRepository,
	users userdomain.UserRepository,
	products catalogdomain.ProductRepository,
	cache *redis.Client,
) *GetStatsHandler {
	return &GetStatsHandler{stats: stats, users: users, products: products, cache: cache}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*domain.Stats, error) {
	period := q.Period
	switch period {
	case domain.PeriodToday, domain.PeriodWeek, domain.PeriodMonth, domain.PeriodYear:
	default:
		period = domain.PeriodMonth
	}

	if cached := h.fromCache(ctx, period); cached != nil {
		return cached, nil
	}

	since := domain.PeriodStart(period, time.Now())

	totalOrders, err := h.stats.OrderCount(since)
	if err != nil {
		return nil, err
	}
	revenue, err := h.stats.Revenue(since)
	if err != nil {
		return nil, err
	}
	byStatus, err := h.stats.OrdersByStatus(since)
	if err != nil {
		return nil, err
	}
	newCustomers, err := h.users.CountCustomersSince(since)
	if err != nil {
		return nil, err
	}
	topProducts, err := h.stats.TopProducts(since, topProductsLimit)
	if err != nil {
		return nil, err
	}
	lowStock, err := h.products.LowStock(lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}
	recentOrders, err := h.stats.RecentOrders(recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	dailySales, err := h.stats.DailySales(salesSeriesDays)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		Period:           period,
		TotalOrders:      totalOrders,
		Revenue:          revenue,
		OrdersByStatus:   byStatus,
		NewCustomers:     newCustomers,
		TopProducts:      topProducts,
		LowStockProducts: lowStock,
		RecentOrders:     recentOrders,
		DailySales:       dailySales,
		GeneratedAt:      time.Now(),
	}

	h.toCache(ctx, period, stats)

	return stats, nil
}

func cacheKey(period string) string {
	return "dashboard:stats:" + period
}

func (h *GetStatsHandler) fromCache(ctx context.Context, period string) *domain.Stats {
	if h.cache == nil {
		return nil
	}

	raw, err := h.cache.Get(ctx, cacheKey(period)).Bytes()
	if err != nil {
		return nil
	}

	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (h *GetStatsHandler) toCache(ctx context.Context, period string, stats *domain.Stats) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, cacheKey(period), raw, cacheTTL).Err(); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to cache dashboard stats")
	}
}
