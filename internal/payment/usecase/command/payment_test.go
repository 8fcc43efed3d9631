package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/order/domain"
	orderrepo "github.com/deshimart/commerce/internal/order/repository"
	"github.com/deshimart/commerce/internal/payment/client"
	paymentdomain "github.com/deshimart/commerce/internal/payment/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.StatusHistoryEntry{},
		&domain.OrderCounter{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func seedOrder(t *testing.T, db *gorm.DB, method string) (*orderrepo.GormOrderRepository, *domain.Order) {
	repo := orderrepo.NewGormOrderRepository(db)

	product := &catalogdomain.Product{
		Name:     "Jamdani Saree",
		Slug:     "jamdani-saree",
		SKU:      "SKU-jamdani",
		Price:    750,
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	order := &domain.Order{
		CustomerID: 7,
		Items: []domain.OrderItem{{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  2,
			Subtotal:  1500,
		}},
		ShippingAddress: domain.ShippingAddress{
			Name:  "Rahim Uddin",
			Phone: "01711111111",
			Email: "rahim@example.com",
			City:  "Dhaka",
		},
		PaymentMethod: method,
		PaymentStatus: domain.PaymentPending,
		Subtotal:      1500,
		Total:         1500,
		Status:        domain.StatusPending,
	}
	require.NoError(t, repo.Create(order))
	return repo, order
}

// fakeGateway scripts the provider's replies
type fakeGateway struct {
	session     *client.Session
	sessionErr  error
	validation  *client.Validation
	validateErr error

	lastRequest client.SessionRequest
}

func (g *fakeGateway) InitiateSession(ctx context.Context, req client.SessionRequest) (*client.Session, error) {
	g.lastRequest = req
	return g.session, g.sessionErr
}

func (g *fakeGateway) ValidateTransaction(ctx context.Context, valID string) (*client.Validation, error) {
	return g.validation, g.validateErr
}

// memoryDedup is an in-process DedupStore
type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *memoryDedup) FirstDelivery(ctx context.Context, key string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func TestInitPayment(t *testing.T) {
	urls := URLs{Frontend: "http://shop.test", Backend: "http://api.test"}

	t.Run("starts a session with the order number as transaction id", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{session: &client.Session{
			SessionKey: "SESSION-1",
			GatewayURL: "https://sandbox.sslcommerz.com/EasyCheckOut/abc",
		}}
		handler := NewInitPaymentHandler(repo, gateway, urls)

		result, err := handler.Handle(context.Background(), InitPaymentCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, result.OrderNumber)
		assert.Equal(t, "SESSION-1", result.SessionKey)
		assert.Equal(t, "https://sandbox.sslcommerz.com/EasyCheckOut/abc", result.GatewayURL)

		assert.Equal(t, order.OrderNumber, gateway.lastRequest.TranID)
		assert.Equal(t, 1500.0, gateway.lastRequest.Amount)
		assert.Equal(t, "http://api.test/api/payments/callback/success", gateway.lastRequest.SuccessURL)
		assert.Equal(t, "http://api.test/api/payments/callback/ipn", gateway.lastRequest.IPNURL)
		assert.Equal(t, "Jamdani Saree", gateway.lastRequest.ProductName)
	})

	t.Run("refuses another customer", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		handler := NewInitPaymentHandler(repo, &fakeGateway{}, urls)

		_, err := handler.Handle(context.Background(), InitPaymentCommand{
			OrderID:   order.ID,
			ActorID:   8,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("refuses cash on delivery", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodCOD)
		handler := NewInitPaymentHandler(repo, &fakeGateway{}, urls)

		_, err := handler.Handle(context.Background(), InitPaymentCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, paymentdomain.ErrNotInitiable)
	})

	t.Run("refuses an already paid order", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		_, _, err := repo.MarkPaid(order.OrderNumber, "VAL-1")
		require.NoError(t, err)
		handler := NewInitPaymentHandler(repo, &fakeGateway{}, urls)

		_, err = handler.Handle(context.Background(), InitPaymentCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, paymentdomain.ErrNotInitiable)
	})

	t.Run("wraps gateway failures", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{sessionErr: errors.New("connection refused")}
		handler := NewInitPaymentHandler(repo, gateway, urls)

		_, err := handler.Handle(context.Background(), InitPaymentCommand{
			OrderID:   order.ID,
			ActorID:   7,
			ActorRole: userdomain.RoleCustomer,
		})
		assert.ErrorIs(t, err, paymentdomain.ErrGatewayFailure)
	})
}

func TestProcessCallbackSuccess(t *testing.T) {
	t.Run("validated payment confirms the order", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{validation: &client.Validation{Status: "VALID"}}
		handler := NewProcessCallbackHandler(repo, gateway, &memoryDedup{})

		result, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, domain.PaymentPaid, result.Order.PaymentStatus)
		assert.Equal(t, domain.StatusConfirmed, result.Order.Status)
		assert.Equal(t, "VAL-123", result.Order.TransactionID)
	})

	t.Run("redelivery through the dedup store is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{validation: &client.Validation{Status: "VALID"}}
		handler := NewProcessCallbackHandler(repo, gateway, &memoryDedup{})

		first, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		require.True(t, first.Applied)

		second, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		assert.False(t, second.Applied)
		assert.Equal(t, "VAL-123", second.Order.TransactionID)
	})

	t.Run("redelivery without a dedup store is still a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{validation: &client.Validation{Status: "VALIDATED"}}
		handler := NewProcessCallbackHandler(repo, gateway, nil)

		first, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		require.True(t, first.Applied)

		second, err := handler.Success(context.Background(), order.OrderNumber, "VAL-456")
		require.NoError(t, err)
		assert.False(t, second.Applied)
		assert.Equal(t, "VAL-123", second.Order.TransactionID)
	})

	t.Run("dedup store failure falls through to the guarded update", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{validation: &client.Validation{Status: "VALID"}}
		handler := NewProcessCallbackHandler(repo, gateway, &memoryDedup{err: errors.New("redis down")})

		result, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, domain.PaymentPaid, result.Order.PaymentStatus)
	})

	t.Run("invalid validation marks the payment failed", func(t *testing.T) {
		db := setupTestDB(t)
		repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
		gateway := &fakeGateway{validation: &client.Validation{Status: "INVALID_TRANSACTION"}}
		handler := NewProcessCallbackHandler(repo, gateway, nil)

		result, err := handler.Success(context.Background(), order.OrderNumber, "VAL-123")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, result.Order.PaymentStatus)
		assert.Equal(t, domain.StatusPending, result.Order.Status)
		assert.Empty(t, result.Order.TransactionID)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		db := setupTestDB(t)
		repo, _ := seedOrder(t, db, domain.MethodSSLCommerz)
		handler := NewProcessCallbackHandler(repo, nil, nil)

		_, err := handler.Success(context.Background(), "DE000000000000", "VAL-123")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestProcessCallbackFailAndCancel(t *testing.T) {
	db := setupTestDB(t)
	repo, order := seedOrder(t, db, domain.MethodSSLCommerz)
	handler := NewProcessCallbackHandler(repo, nil, nil)

	result, err := handler.Fail(context.Background(), order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, result.Order.PaymentStatus)
	// Fulfillment is untouched so the customer can retry
	assert.Equal(t, domain.StatusPending, result.Order.Status)

	result, err = handler.Cancel(context.Background(), order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, result.Order.PaymentStatus)
}
