//go:build wireinject
// +build wireinject

package payment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	orderdomain "github.com/deshimart/commerce/internal/order/domain"
	orderrepo "github.com/deshimart/commerce/internal/order/repository"
	"github.com/deshimart/commerce/internal/payment/delivery/http"
	"github.com/deshimart/commerce/internal/payment/usecase/command"
	"github.com/deshimart/commerce/internal/payment/usecase/query"
)

// ProvideOrderRepository provides the order repository payments operate on
func ProvideOrderRepository(db *gorm.DB) orderdomain.OrderRepository {
	return orderrepo.NewGormOrderRepository(db)
}

var UseCaseSet = wire.NewSet(
	command.NewInitPaymentHandler,
	command.NewProcessCallbackHandler,
	query.NewGetPaymentStatusHandler,
)

// InitializeHTTPHandler initializes the payment HTTP handler with all
// dependencies. The dedup store may be nil when Redis is disabled.
func InitializeHTTPHandler(db *gorm.DB, gateway command.Gateway, dedup command.DedupStore, urls command.URLs) (*http.PaymentHandler, error) {
	wire.Build(
		ProvideOrderRepository,
		UseCaseSet,
		http.NewPaymentHandler,
	)
	return nil, nil
}
