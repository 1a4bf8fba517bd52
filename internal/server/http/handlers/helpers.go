package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecutune/ecutune/internal/adapter/payment"
	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *gin.Context) string {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return ""
	}
	identity, _ := val.(string)
	return identity
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, payment.ErrUnknownProvider):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrForbidden):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrUnauthorized):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, domainErrors.ErrValidation):
		c.Status(http.StatusBadRequest)
	case errors.Is(err, domainErrors.ErrTerminalState),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrConflict):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrTooLarge):
		c.Status(http.StatusRequestEntityTooLarge)
	case errors.Is(err, domainErrors.ErrUnsupportedType):
		c.Status(http.StatusUnsupportedMediaType)
	case errors.Is(err, domainErrors.ErrUpstreamUnavailable):
		c.Status(http.StatusBadGateway)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
