package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getThresholds(c *gin.Context) {
	t, err := h.repos.Thresholds.Load(c.Request.Context())
	if err != nil {
		h.log.Errorw("threshold_load_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thresholds"})
		return
	}
	dataResponse(c, t)
}

// updateThresholds accepts a partial or full field map.
func (h *Handler) updateThresholds(c *gin.Context) {
	var fields map[string]float64
	if !h.bindJSONOrBadRequest(c, &fields) {
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no threshold fields provided"})
		return
	}
	u := currentUser(c)
	t, err := h.services.UpdateThresholds(c.Request.Context(), fields, u.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.Record(u.Username, "update_thresholds", "")
	dataResponse(c, t)
}
