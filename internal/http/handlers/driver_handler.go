// README: Driver status handler (Offline / Online / Go Home toggle).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offerstack/internal/modules/offer"
)

type DriverHandler struct {
	runner *offer.Runner
}

func NewDriverHandler(runner *offer.Runner) *DriverHandler {
	return &DriverHandler{runner: runner}
}

type setStatusReq struct {
	Status offer.Availability `json:"status"`
}

func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.runner.SetAvailability(c.Request.Context(), req.Status); err != nil {
		writeOfferError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": req.Status})
}
