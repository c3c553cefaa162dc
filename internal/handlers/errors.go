package handlers

import (
	"github.com/goswift/goswift-backend/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// fail surfaces a service error with its mapped HTTP status.
func fail(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
