// Package response renders handler results and lifecycle errors as JSON.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "inferd/pkg/errors"
)

// JSON sends a success payload.
func JSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error maps a lifecycle error to its HTTP status. Validation failures carry
// their field-level detail; everything else is reported as text.
func Error(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var vset *apperrors.ValidationErrorSet
	if errors.As(err, &vset) {
		c.JSON(status, gin.H{"detail": vset.Errors})
		return
	}

	c.JSON(status, gin.H{"detail": err.Error()})
}
