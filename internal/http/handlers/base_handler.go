// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"offerstack/internal/modules/offer"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the ids upstream ride services hand out: letters, digits,
// '-' and '_', at most 64 chars.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeOfferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, offer.ErrBadRecord), errors.Is(err, offer.ErrUnknownAction), errors.Is(err, offer.ErrBadStatus):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, offer.ErrUnknownOffer):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, offer.ErrDuplicateOffer), errors.Is(err, offer.ErrInvalidTransition), errors.Is(err, offer.ErrUnavailable):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, offer.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "offer stack unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// offerID reads and checks the :id path parameter, writing a 400 when it is
// malformed.
func offerID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid offer id")
		return "", false
	}
	return id, true
}
