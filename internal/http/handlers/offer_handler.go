// README: Offer handlers; stack view, push, press, fare slider, accept/reject and retract.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"offerstack/internal/modules/offer"
	"offerstack/internal/types"
)

type OfferHandler struct {
	runner *offer.Runner
}

func NewOfferHandler(runner *offer.Runner) *OfferHandler {
	return &OfferHandler{runner: runner}
}

func (h *OfferHandler) View(c *gin.Context) {
	v, err := h.runner.Snapshot(c.Request.Context())
	if err != nil {
		writeOfferError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

// Push admits a record sent by an upstream ride service.
func (h *OfferHandler) Push(c *gin.Context) {
	var rec offer.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !isValidID(string(rec.ID)) {
		writeError(c, http.StatusBadRequest, "invalid offer id")
		return
	}
	admitted, err := h.runner.Submit(c.Request.Context(), rec)
	if err != nil {
		writeOfferError(c, err)
		return
	}
	if !admitted {
		writeJSON(c, http.StatusOK, gin.H{"offer_id": rec.ID, "admitted": false, "reason": "stack_full"})
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"offer_id": rec.ID, "admitted": true})
}

func (h *OfferHandler) Press(c *gin.Context) {
	id, ok := offerID(c)
	if !ok {
		return
	}
	if err := h.runner.Press(c.Request.Context(), types.ID(id)); err != nil {
		writeOfferError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"active_id": id})
}

type setFareReq struct {
	Fare *float64 `json:"fare"`
}

func (h *OfferHandler) SetFare(c *gin.Context) {
	id, ok := offerID(c)
	if !ok {
		return
	}
	var req setFareReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Fare == nil {
		writeError(c, http.StatusBadRequest, "missing fare")
		return
	}
	var st offer.State
	err := h.runner.Do(c.Request.Context(), func(s *offer.Service, _ time.Time) error {
		if _, err := s.SetFare(types.ID(id), types.Fare(*req.Fare)); err != nil {
			return err
		}
		st, _ = s.Get(types.ID(id))
		return nil
	})
	if err != nil {
		writeOfferError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"offer_id":        id,
		"negotiated_fare": st.NegotiatedFare,
		"fare":            offer.DisplayFare(st),
		"button_label":    offer.ButtonLabel(st),
	})
}

func (h *OfferHandler) Accept(c *gin.Context) {
	h.act(c, offer.ActionAcceptOrBargain)
}

func (h *OfferHandler) Reject(c *gin.Context) {
	h.act(c, offer.ActionReject)
}

func (h *OfferHandler) act(c *gin.Context, a offer.Action) {
	id, ok := offerID(c)
	if !ok {
		return
	}
	out, err := h.runner.Act(c.Request.Context(), types.ID(id), a)
	if err != nil {
		writeOfferError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

// Retract withdraws an offer the upstream service cancelled. No outcome is
// reported for it.
func (h *OfferHandler) Retract(c *gin.Context) {
	id, ok := offerID(c)
	if !ok {
		return
	}
	if err := h.runner.Remove(c.Request.Context(), types.ID(id)); err != nil {
		writeOfferError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
