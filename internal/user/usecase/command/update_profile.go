package command

import (
	"fmt"

	"github.com/deshimart/commerce/internal/user/domain"
)

// UpdateProfileCommand represents the command to update a user's own profile
type UpdateProfileCommand struct {
	UserID  uint
	Name    string
	Phone   string
	Address domain.Address
}

// UpdateProfileHandler handles profile updates
type UpdateProfileHandler struct {
	repo domain.UserRepository
}

// NewUpdateProfileHandler creates a new update profile handler
func NewUpdateProfileHandler(repo domain.UserRepository) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo}
}

// Handle executes the update profile command
func (h *UpdateProfileHandler) Handle(cmd UpdateProfileCommand) (*domain.User, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	user, err := h.repo.FindByID(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if cmd.Name != "" {
		user.Name = cmd.Name
	}
	if cmd.Phone != "" {
		user.Phone = cmd.Phone
	}
	user.Address = cmd.Address

	if err := h.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// ToggleActiveHandler activates or deactivates a customer account
type ToggleActiveHandler struct {
	repo domain.UserRepository
}

// NewToggleActiveHandler creates a new toggle active handler
func NewToggleActiveHandler(repo domain.UserRepository) *ToggleActiveHandler {
	return &ToggleActiveHandler{repo: repo}
}

// Handle flips the IsActive flag on a customer account
func (h *ToggleActiveHandler) Handle(userID uint) (*domain.User, error) {
	user, err := h.repo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("customer not found")
	}

	user.IsActive = !user.IsActive
	if err := h.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return user, nil
}
