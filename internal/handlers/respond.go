package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/circuit-dev/circuit/internal/services"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps service outcomes onto responses. Denials and
// missing records stay generic so a caller can't probe for existence; only
// storage faults become a 500.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrDuplicate):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	default:
		log.Printf("Service error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
