package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/internal/interfaces/http/response"
)

// AccountService registers and looks up accounts
type AccountService interface {
	Register(ctx context.Context, input *entities.RegisterAccountInput) (*entities.Account, *entities.Issuance, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error)
}

// AccountHandler handles account endpoints
type AccountHandler struct {
	accounts   AccountService
	returnCode bool
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountService, returnCode bool) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		returnCode: returnCode,
	}
}

// Register creates a pending account and sends its first verification code
// POST /api/v1/accounts/register
func (h *AccountHandler) Register(c *gin.Context) {
	var input entities.RegisterAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	account, issuance, err := h.accounts.Register(c.Request.Context(), &input)
	if err != nil && (account == nil || !errors.Is(err, domainerrors.ErrDependencyFailure)) {
		response.Error(c, err)
		return
	}

	message := "Registration successful. Please verify your phone number."
	if err != nil {
		message = "Registration successful but the verification code could not be delivered. Please request a new one."
	}

	body := gin.H{
		"message": message,
		"account": accountBody(account),
	}
	if issuance != nil {
		body["verification"] = issuanceBody(issuance, h.returnCode)
	}
	response.Success(c, http.StatusCreated, body)
}

// Get returns an account by id
// GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid account ID"))
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Account not found"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": accountBody(account)})
}

func accountBody(account *entities.Account) gin.H {
	body := gin.H{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"phone":         account.Phone,
		"userType":      account.UserType,
		"phoneVerified": account.PhoneVerified,
		"status":        account.Status,
		"createdAt":     account.CreatedAt,
	}
	if account.PhoneVerifiedAt.Valid {
		body["phoneVerifiedAt"] = account.PhoneVerifiedAt.Time
	}
	return body
}
