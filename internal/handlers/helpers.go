package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/gin-gonic/gin"
)

// actorFrom reads the acting identity from request headers. Authentication
// is an external collaborator; the gateway in front of this service fills
// X-Actor-Role and X-Actor-Id.
func actorFrom(c *gin.Context) (role string, actorID *uint) {
	role = c.GetHeader("X-Actor-Role")
	if raw := c.GetHeader("X-Actor-Id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			v := uint(id)
			actorID = &v
		}
	}
	return role, actorID
}

// paramID parses a numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps typed engine errors to HTTP responses. Errors are never
// swallowed or replaced with fabricated rows.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidLoanTerms),
		errors.Is(err, services.ErrInvalidPayment),
		errors.Is(err, services.ErrMissingStartDate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrUnsupportedCovenantType),
		errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// requireAdmin aborts unless the actor role header says admin
func requireAdmin(c *gin.Context) bool {
	role, _ := actorFrom(c)
	if role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return false
	}
	return true
}
