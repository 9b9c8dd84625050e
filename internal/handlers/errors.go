// internal/handlers/errors.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

// parseIDParam reads a numeric path parameter. On a bad value it answers the
// request itself and returns false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// respondServiceError translates service sentinel errors into HTTP responses.
// Unknown errors are logged and answered with a generic 500 so internals
// never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
		return
	}

	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "Product")
	case errors.Is(err, services.ErrBillNotFound):
		utils.NotFoundResponse(c, "Bill")
	case errors.Is(err, services.ErrReturnNotFound):
		utils.NotFoundResponse(c, "Return request")
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.NotFoundResponse(c, "Customer")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "User")
	case errors.Is(err, services.ErrProductInactive):
		utils.UnprocessableResponse(c, "Product is not available for sale")
	case errors.Is(err, services.ErrInsufficientStock):
		utils.UnprocessableResponse(c, "Insufficient stock")
	case errors.Is(err, services.ErrAlreadyDecided):
		utils.ConflictResponse(c, "Return request has already been decided")
	case errors.Is(err, services.ErrProductInUse):
		utils.ConflictResponse(c, "Product appears on a bill and cannot be deleted")
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
