package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
	"wefix.backend/internal/interfaces/http/response"
)

// VerificationService is the verification lifecycle consumed by the HTTP adapter
type VerificationService interface {
	RequestCode(ctx context.Context, phone string) (*entities.Issuance, error)
	Resend(ctx context.Context, phone string) (*entities.Issuance, error)
	SendToAccount(ctx context.Context, accountID uuid.UUID) (*entities.Issuance, error)
	VerifyAccount(ctx context.Context, phone, code string) (entities.CheckResult, error)
}

// VerificationHandler handles phone verification endpoints
type VerificationHandler struct {
	verification VerificationService
	returnCode   bool
}

// NewVerificationHandler creates a new verification handler.
// returnCode echoes issued codes in responses and must stay off in production.
func NewVerificationHandler(verification VerificationService, returnCode bool) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		returnCode:   returnCode,
	}
}

// Send issues a code to a phone unless a recent one is still pending
// POST /api/v1/verification/send
func (h *VerificationHandler) Send(c *gin.Context) {
	var input entities.SendVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	issuance, err := h.verification.RequestCode(c.Request.Context(), input.Phone)
	h.respondIssuance(c, http.StatusOK, issuance, err)
}

// Resend issues a fresh code unless the previous one is still inside its cooldown
// POST /api/v1/verification/resend
func (h *VerificationHandler) Resend(c *gin.Context) {
	var input entities.SendVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	issuance, err := h.verification.Resend(c.Request.Context(), input.Phone)
	h.respondIssuance(c, http.StatusOK, issuance, err)
}

// SendToAccount issues a code to the phone on file for an account
// POST /api/v1/accounts/:id/verification/send
func (h *VerificationHandler) SendToAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid account ID"))
		return
	}

	issuance, err := h.verification.SendToAccount(c.Request.Context(), id)
	h.respondIssuance(c, http.StatusOK, issuance, err)
}

// Verify checks a code and marks the matching account verified
// POST /api/v1/verification/verify
func (h *VerificationHandler) Verify(c *gin.Context) {
	var input entities.VerifyPhoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.verification.VerifyAccount(c.Request.Context(), input.Phone, input.Code)
	if err != nil && result.Reason != entities.ReasonDependencyFailure {
		response.Error(c, err)
		return
	}
	response.CheckResult(c, result)
}

func (h *VerificationHandler) respondIssuance(c *gin.Context, status int, issuance *entities.Issuance, err error) {
	if err != nil {
		// stored but undelivered: the client may retry delivery with resend
		if issuance != nil && errors.Is(err, domainerrors.ErrDependencyFailure) {
			body := issuanceBody(issuance, h.returnCode)
			body["code"] = domainerrors.CodeDependencyFailure
			body["reason"] = entities.ReasonDependencyFailure
			body["message"] = "Verification code could not be delivered. Please try again"
			response.Success(c, http.StatusBadGateway, body)
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, status, issuanceBody(issuance, h.returnCode))
}

func issuanceBody(issuance *entities.Issuance, returnCode bool) gin.H {
	body := gin.H{
		"phone":     issuance.Phone,
		"expiresAt": issuance.ExpiresAt.UTC().Format(time.RFC3339),
		"delivered": issuance.Delivered,
	}
	if returnCode {
		body["otp"] = issuance.Code
	}
	return body
}
