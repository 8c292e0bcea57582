package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"proposal-market/internal/repository"
	"proposal-market/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to an HTTP status. Anything unmapped is
// logged and reported as a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	var transitionErr *services.InvalidStateTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":           transitionErr.Error(),
			"current_status":  transitionErr.Current,
			"allowed_actions": transitionErr.Allowed,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent update, please retry"})
	case errors.Is(err, services.ErrAuthorizationDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, services.ErrNdaRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNdaAlreadySigned),
		errors.Is(err, services.ErrAlreadyRequested),
		errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrNoRequestPending),
		errors.Is(err, services.ErrTerminalState),
		errors.Is(err, services.ErrDeleteRequestPending),
		errors.Is(err, services.ErrNoDeleteRequest),
		errors.Is(err, services.ErrInvalidBuyers):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0

	if l, ok := intQuery(c, "limit"); ok && l > 0 && l <= 100 {
		limit = l
	}
	if o, ok := intQuery(c, "offset"); ok && o >= 0 {
		offset = o
	}
	return limit, offset
}

func intQuery(c *gin.Context, key string) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
