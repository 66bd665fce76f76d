package handler

import (
	"log/slog"
	"net/http"
	"time"

	"atelier/internal/delivery/http/middleware"
	"atelier/internal/delivery/http/response"
	"atelier/internal/domain/entity"
	"atelier/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(accountUC usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		logger:    logger,
	}
}

// changePasswordRequest is the PUT /account/password body.
type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// registerAccountRequest is the POST /operator/accounts body.
type registerAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Scope    string `json:"scope" validate:"required"`
}

// accountResponse is the public shape of an account.
type accountResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Scope     string    `json:"scope"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(account *entity.Account) accountResponse {
	return accountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Phone:     account.Phone,
		Scope:     account.Scope.String(),
		CreatedAt: account.CreatedAt,
	}
}

// ChangePassword handles the password change request. On success every token
// the account held is revoked, so the client must sign in again.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "no authenticated principal")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password change input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "old_password and new_password are required")
	}

	err := h.accountUC.ChangePassword(c.Request().Context(), usecase.ChangePasswordInput{
		AccountID:   principal.Account.ID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed, all sessions revoked")
}

// GetMe handles the request for the caller's own account profile.
func (h *AccountHandler) GetMe(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "no authenticated principal")
	}

	account, err := h.accountUC.GetAccount(c.Request().Context(), principal.Account.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountResponse(account), "")
}

// RegisterAccount handles operator-driven account provisioning.
func (h *AccountHandler) RegisterAccount(c echo.Context) error {
	var req registerAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "name, username, password and scope are required")
	}

	account, err := h.accountUC.RegisterAccount(c.Request().Context(), usecase.RegisterAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
		Scope:    entity.Scope(req.Scope),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAccountResponse(account), "Account registered successfully")
}
