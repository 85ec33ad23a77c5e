// README: Outcome history handler backed by the ledger.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"offerstack/internal/modules/offer"
)

const maxOutcomeLimit = 200

type OutcomeLister interface {
	Recent(ctx context.Context, limit int) ([]offer.Outcome, error)
}

type OutcomeHandler struct {
	ledger OutcomeLister
}

// NewOutcomeHandler accepts a nil ledger; List then answers 503.
func NewOutcomeHandler(ledger OutcomeLister) *OutcomeHandler {
	return &OutcomeHandler{ledger: ledger}
}

func (h *OutcomeHandler) List(c *gin.Context) {
	if h.ledger == nil {
		writeError(c, http.StatusServiceUnavailable, "outcome ledger disabled")
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxOutcomeLimit)
	}
	outs, err := h.ledger.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if outs == nil {
		outs = []offer.Outcome{}
	}
	writeJSON(c, http.StatusOK, gin.H{"outcomes": outs})
}
