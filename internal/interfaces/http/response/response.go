package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"wefix.backend/internal/domain/entities"
	domainerrors "wefix.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr == nil {
		appErr = domainerrors.InternalServerError("internal server error")
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
	}
	if retry, ok := retryAfter(err); ok {
		secs := retry.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		body["reason"] = entities.ReasonTooSoon
		body["retryAfterSeconds"] = secs
	}
	c.JSON(appErr.Status, body)
}

// StatusForReason maps a check outcome onto an HTTP status
func StatusForReason(reason entities.Reason) int {
	switch reason {
	case entities.ReasonOK:
		return http.StatusOK
	case entities.ReasonNotFound:
		return http.StatusNotFound
	case entities.ReasonExpired:
		return http.StatusGone
	case entities.ReasonExhausted, entities.ReasonTooSoon:
		return http.StatusTooManyRequests
	case entities.ReasonMismatch:
		return http.StatusBadRequest
	case entities.ReasonDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CheckResult renders a check outcome with the status for its reason
func CheckResult(c *gin.Context, result entities.CheckResult) {
	body := gin.H{
		"ok":     result.OK,
		"reason": result.Reason,
	}
	switch result.Reason {
	case entities.ReasonOK:
		body["phoneVerified"] = true
	case entities.ReasonMismatch:
		body["remainingAttempts"] = result.RemainingAttempts
		body["message"] = "Invalid verification code. " + strconv.Itoa(result.RemainingAttempts) + " attempts remaining"
	case entities.ReasonNotFound:
		body["message"] = "No verification code found. Please request a new one"
	case entities.ReasonExpired:
		body["message"] = "Verification code has expired. Please request a new one"
	case entities.ReasonExhausted:
		body["message"] = "Too many failed attempts. Please request a new code"
	case entities.ReasonDependencyFailure:
		body["message"] = "Verification could not be completed. Please try again"
	}
	c.JSON(StatusForReason(result.Reason), body)
}

func retryAfter(err error) (*domainerrors.RetryAfterError, bool) {
	var retry *domainerrors.RetryAfterError
	if errors.As(err, &retry) {
		return retry, true
	}
	return nil, false
}
