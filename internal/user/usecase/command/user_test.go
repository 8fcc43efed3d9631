package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deshimart/commerce/internal/user/domain"
	"github.com/deshimart/commerce/internal/user/repository"
	"github.com/deshimart/commerce/pkg/auth"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func registerCommand() RegisterUserCommand {
	return RegisterUserCommand{
		Name:     "Rahim Uddin",
		Email:    "rahim@example.com",
		Phone:    "01711111111",
		Password: "secret123",
	}
}

func TestRegisterUser(t *testing.T) {
	t.Run("registers a customer with a hashed password", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewRegisterUserHandler(repository.NewGormUserRepository(db))

		user, err := handler.Handle(registerCommand())
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "secret123", user.Password)
		assert.True(t, auth.CheckPassword(user.Password, "secret123"))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewRegisterUserHandler(repository.NewGormUserRepository(db))

		_, err := handler.Handle(registerCommand())
		require.NoError(t, err)

		_, err = handler.Handle(registerCommand())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "email already exists")
	})

	t.Run("rejects a short password", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewRegisterUserHandler(repository.NewGormUserRepository(db))

		cmd := registerCommand()
		cmd.Password = "abc"
		_, err := handler.Handle(cmd)
		assert.Error(t, err)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewRegisterUserHandler(repository.NewGormUserRepository(db))

		cmd := registerCommand()
		cmd.Role = "superuser"
		_, err := handler.Handle(cmd)
		assert.Error(t, err)
	})

	t.Run("accepts an explicit admin role", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewRegisterUserHandler(repository.NewGormUserRepository(db))

		cmd := registerCommand()
		cmd.Role = domain.RoleAdmin
		user, err := handler.Handle(cmd)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})
}

func TestLoginUser(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewGormUserRepository(db)
	registered, err := NewRegisterUserHandler(repo).Handle(registerCommand())
	require.NoError(t, err)

	handler := NewLoginUserHandler(repo)

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		resp, err := handler.Handle(LoginUserCommand{
			Email:    "rahim@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, resp.User.ID)

		claims, err := auth.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, domain.RoleCustomer, claims.Role)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := handler.Handle(LoginUserCommand{
			Email:    "rahim@example.com",
			Password: "wrong-pass",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid credentials")
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		_, err := handler.Handle(LoginUserCommand{
			Email:    "nobody@example.com",
			Password: "secret123",
		})
		assert.Error(t, err)
	})

	t.Run("rejects a deactivated account", func(t *testing.T) {
		require.NoError(t, db.Model(&domain.User{}).
			Where("id = ?", registered.ID).
			Update("is_active", false).Error)

		_, err := handler.Handle(LoginUserCommand{
			Email:    "rahim@example.com",
			Password: "secret123",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "deactivated")
	})
}
