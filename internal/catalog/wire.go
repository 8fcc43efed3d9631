//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/deshimart/commerce/internal/catalog/delivery/http"
	"github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/catalog/usecase/command"
	"github.com/deshimart/commerce/internal/catalog/usecase/query"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

// ProvideCategoryRepository provides the category repository
func ProvideCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return repository.NewGormCategoryRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideCategoryRepository,
)

var UseCaseSet = wire.NewSet(
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
	command.NewDeleteProductHandler,
	command.NewSaveCategoryHandler,
	command.NewDeleteCategoryHandler,
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewListCategoriesHandler,
)

// InitializeHTTPHandler initializes the catalog HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.CatalogHandler, error) {
	wire.Build(
		RepositorySet,
		UseCaseSet,
		http.NewCatalogHandlerWithDI,
	)
	return nil, nil
}
