package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	catalogrepo "github.com/deshimart/commerce/internal/catalog/repository"
	"github.com/deshimart/commerce/internal/order/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Order{},
		&domain.OrderItem{},
		&domain.StatusHistoryEntry{},
		&domain.OrderCounter{},
	)
}

// Create persists an order with its items and applies every conditional stock
// decrement inside one transaction. Any decrement that cannot be honored
// rolls back the order, the counter increment and every prior decrement.
func (r *GormOrderRepository) Create(order *domain.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx)
		if err != nil {
			return fmt.Errorf("failed to allocate order number: %w", err)
		}
		order.OrderNumber = formatOrderNumber(time.Now(), seq)

		for i := range order.Items {
			item := &order.Items[i]
			if err := catalogrepo.DecrementStockTx(tx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, catalogdomain.ErrInsufficientStock) {
					return stockConflict(tx, item)
				}
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		entry := domain.StatusHistoryEntry{
			OrderID:   order.ID,
			Status:    domain.StatusPending,
			Note:      "Order placed",
			Timestamp: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		order.StatusHistory = append(order.StatusHistory, entry)

		return nil
	})
}

// stockConflict builds the InsufficientStockError for a failed decrement,
// re-reading the product inside the transaction for its name and live count.
func stockConflict(tx *gorm.DB, item *domain.OrderItem) error {
	var product catalogdomain.Product
	available := 0
	name := item.Name
	if err := tx.First(&product, item.ProductID).Error; err == nil {
		available = product.Stock
		name = product.Name
	}
	return &domain.InsufficientStockError{
		ProductID:   item.ProductID,
		ProductName: name,
		Available:   available,
		Requested:   item.Quantity,
	}
}

// nextSequence bumps the order counter row and returns the new value
func nextSequence(tx *gorm.DB) (int64, error) {
	result := tx.Model(&domain.OrderCounter{}).
		Where("id = ?", 1).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		counter := domain.OrderCounter{ID: 1, Value: 1}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var counter domain.OrderCounter
	if err := tx.First(&counter, 1).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// formatOrderNumber renders "DE" + last 8 digits of unix millis + zero-padded
// sequence. Uniqueness comes from the sequence; the timestamp keeps the
// number human-readable and roughly sortable.
func formatOrderNumber(now time.Time, seq int64) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("DE%s%04d", millis, seq)
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Preload("Items").Preload("StatusHistory").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByOrderNumber(orderNumber string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Preload("Items").Preload("StatusHistory").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindAll(filter domain.OrderFilter) ([]domain.Order, int64, error) {
	query := r.db.Model(&domain.Order{})

	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := "created_at DESC"
	if filter.Sort == "created_at" {
		sort = "created_at ASC"
	}

	var orders []domain.Order
	err := query.Preload("Items").
		Order(sort).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *GormOrderRepository) UpdateStatus(orderID uint, status, note string) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		o.Status = status
		if err := tx.Model(&o).Update("status", status).Error; err != nil {
			return err
		}

		entry := domain.StatusHistoryEntry{
			OrderID:   o.ID,
			Status:    status,
			Note:      note,
			Timestamp: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		o.StatusHistory = append(o.StatusHistory, entry)
		order = &o
		return nil
	})
	return order, err
}

func (r *GormOrderRepository) UpdatePaymentStatus(orderID uint, paymentStatus string) (*domain.Order, error) {
	order, err := r.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(order).Update("payment_status", paymentStatus).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = paymentStatus
	return order, nil
}

// CancelAndRestore marks the order cancelled and undoes its stock effect.
// The status write, history entry and every stock restore share one
// transaction. The guarded update makes the restore apply exactly once: two
// requests that both loaded the order as cancellable race on the WHERE
// clause, and the loser restores nothing.
func (r *GormOrderRepository) CancelAndRestore(order *domain.Order, reason string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Order{}).
			Where("id = ? AND status IN ?", order.ID, []string{domain.StatusPending, domain.StatusConfirmed}).
			Update("status", domain.StatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: order is no longer cancellable", domain.ErrInvalidTransition)
		}

		entry := domain.StatusHistoryEntry{
			OrderID:   order.ID,
			Status:    domain.StatusCancelled,
			Note:      reason,
			Timestamp: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := catalogrepo.RestoreStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = domain.StatusCancelled
		order.StatusHistory = append(order.StatusHistory, entry)
		return nil
	})
}

// MarkPaid records a validated gateway payment. The guarded update makes
// redelivered gateway notifications a no-op: once payment_status is paid the
// WHERE clause matches nothing. The update and its history entry commit
// together.
func (r *GormOrderRepository) MarkPaid(orderNumber, transactionID string) (*domain.Order, bool, error) {
	order, err := r.FindByOrderNumber(orderNumber)
	if err != nil {
		return nil, false, err
	}

	applied := false
	err = r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, domain.PaymentPaid).
			Updates(map[string]interface{}{
				"payment_status": domain.PaymentPaid,
				"transaction_id": transactionID,
				"status":         domain.StatusConfirmed,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		entry := domain.StatusHistoryEntry{
			OrderID:   order.ID,
			Status:    domain.StatusConfirmed,
			Note:      "Payment received",
			Timestamp: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		order.PaymentStatus = domain.PaymentPaid
		order.TransactionID = transactionID
		order.Status = domain.StatusConfirmed
		order.StatusHistory = append(order.StatusHistory, entry)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}

func (r *GormOrderRepository) MarkPaymentFailed(orderNumber string) (*domain.Order, error) {
	order, err := r.FindByOrderNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(order).Update("payment_status", domain.PaymentFailed).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = domain.PaymentFailed
	return order, nil
}

func (r *GormOrderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Order{}).Count(&count).Error
	return count, err
}

// RecentByCustomer implements the customer-profile order history used by the
// admin customer detail view.
func (r *GormOrderRepository) RecentByCustomer(customerID uint, limit int) ([]userdomain.OrderSummary, error) {
	var orders []domain.Order
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]userdomain.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, userdomain.OrderSummary{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Total:       o.Total,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		})
	}
	return summaries, nil
}
