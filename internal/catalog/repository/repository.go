package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deshimart/commerce/internal/catalog/domain"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Category{}, &domain.Product{})
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	if product.Slug == "" {
		product.Slug = domain.Slugify(product.Name)
	}
	return r.db.Create(product).Error
}

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindBySlug(slug string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Preload("Category").Where("slug = ?", slug).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(filter domain.ProductFilter) ([]domain.Product, int64, error) {
	query := r.db.Model(&domain.Product{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	switch sort {
	case "price", "price ASC":
		sort = "price ASC"
	case "-price":
		sort = "price DESC"
	case "-sold_count":
		sort = "sold_count DESC"
	default:
		sort = "created_at DESC"
	}

	var products []domain.Product
	err := query.Preload("Category").
		Order(sort).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error
	return products, total, err
}

func (r *GormProductRepository) Update(product *domain.Product) error {
	product.Slug = domain.Slugify(product.Name)
	return r.db.Save(product).Error
}

func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&domain.Product{}, id).Error
}

func (r *GormProductRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Product{}).Count(&count).Error
	return count, err
}

// DecrementStock applies a conditional stock decrement and matching sold-count
// increment. The WHERE clause guards against overselling: when two requests
// race for the last units, only the one the database applies first succeeds.
func (r *GormProductRepository) DecrementStock(id uint, qty int) error {
	return DecrementStockTx(r.db, id, qty)
}

func (r *GormProductRepository) RestoreStock(id uint, qty int) error {
	return RestoreStockTx(r.db, id, qty)
}

func (r *GormProductRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *GormProductRepository) LowStock(threshold, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.Where("stock < ? AND is_active = ?", threshold, true).
		Order("stock ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// DecrementStockTx is the transaction-scoped form of DecrementStock. The order
// lifecycle runs it inside the order-placement transaction so a failed
// decrement rolls back the whole order.
func DecrementStockTx(tx *gorm.DB, id uint, qty int) error {
	result := tx.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// RestoreStockTx is the inverse of DecrementStockTx, used on cancellation
func RestoreStockTx(tx *gorm.DB, id uint, qty int) error {
	return tx.Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"sold_count": gorm.Expr("sold_count - ?", qty),
		}).Error
}
