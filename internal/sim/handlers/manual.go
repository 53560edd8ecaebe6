package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type controlRequest struct {
	Actuator string `json:"actuator" binding:"required"`
	State    bool   `json:"state"`
	PWM      *int   `json:"pwm,omitempty"`
}

func (h *Handler) control(c *gin.Context) {
	var req controlRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	u := currentUser(c)
	if err := h.services.Control(c.Request.Context(), req.Actuator, req.State, req.PWM, u.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.services.Record(u.Username, "manual_control", req.Actuator)
	c.JSON(http.StatusOK, gin.H{"message": "command applied"})
}

func (h *Handler) resumeAuto(c *gin.Context) {
	u := currentUser(c)
	if err := h.services.ResumeAutomatic(c.Request.Context(), u.Username); err != nil {
		h.log.Errorw("resume_auto_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resume automation"})
		return
	}
	h.services.Record(u.Username, "resume_auto", "")
	c.JSON(http.StatusOK, gin.H{"message": "automation resumed"})
}
