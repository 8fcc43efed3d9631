//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/order/delivery/http"
	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/order/repository"
	"github.com/deshimart/commerce/internal/order/usecase/command"
	"github.com/deshimart/commerce/internal/order/usecase/query"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// ProvideProductRepository provides the catalog product repository used for
// price snapshots and stock checks
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewGormProductRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideProductRepository,
)

var UseCaseSet = wire.NewSet(
	command.NewPlaceOrderHandler,
	command.NewUpdateStatusHandler,
	command.NewUpdatePaymentStatusHandler,
	command.NewCancelOrderHandler,
	query.NewGetOrderHandler,
	query.NewListOrdersHandler,
)

// InitializeHTTPHandler initializes the order HTTP handler with all
// dependencies. The publisher may be nil when Kafka is disabled.
func InitializeHTTPHandler(db *gorm.DB, publisher command.OrderEventPublisher, shipping command.ShippingPolicy) (*http.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		UseCaseSet,
		http.NewOrderHandler,
	)
	return nil, nil
}
