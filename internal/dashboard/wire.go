//go:build wireinject
// +build wireinject

package dashboard

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/dashboard/delivery/http"
	"github.com/deshimart/commerce/internal/dashboard/domain"
	"github.com/deshimart/commerce/internal/dashboard/repository"
	"github.com/deshimart/commerce/internal/dashboard/usecase/query"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
	userrepo "github.com/deshimart/commerce/internal/user/repository"
)

// ProvideStatsRepository provides the stats repository
func ProvideStatsRepository(db *gorm.DB) domain.StatsRepository {
	return repository.NewGormStatsRepository(db)
}

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) userdomain.UserRepository {
	return userrepo.NewGormUserRepository(db)
}

// ProvideProductRepository provides the catalog product repository
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewGormProductRepository(db)
}

// InitializeHTTPHandler initializes the dashboard HTTP handler with all
// dependencies. The cache client may be nil when Redis is disabled.
func InitializeHTTPHandler(db *gorm.DB, cache *redis.Client) (*http.DashboardHandler, error) {
	wire.Build(
		ProvideStatsRepository,
		ProvideUserRepository,
		ProvideProductRepository,
		query.NewGetStatsHandler,
		http.NewDashboardHandler,
	)
	return nil, nil
}
