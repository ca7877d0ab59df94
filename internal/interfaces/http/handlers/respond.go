// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// respondError maps an application error to its HTTP response. 4xx bodies
// carry the machine-stable reason and message; 5xx bodies carry a generic
// message only.
func respondError(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{
			"error": "internal server error",
		})
		return
	}

	c.JSON(status, gin.H{
		"error":  apperror.Reason(err),
		"detail": err.Error(),
	})
}

// bindingError wraps a request binding failure in the validation taxonomy.
func bindingError(err error) error {
	return apperror.Validation("invalid_request", err.Error())
}
