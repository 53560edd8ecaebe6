package handlers

import (
	"net/http"
	"strconv"

	greenhouse "greenhouse_console"

	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.repos.Users.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("list_users_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	dataResponse(c, users)
}

func (h *Handler) listOnline(c *gin.Context) {
	dataResponse(c, h.hub.Online())
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.repos.Users.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	h.services.Record(currentUser(c).Username, "delete_user", strconv.Itoa(id))
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

type banRequest struct {
	Banned bool `json:"banned"`
}

func (h *Handler) setBanned(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req banRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	status := greenhouse.StatusActive
	if req.Banned {
		status = greenhouse.StatusBanned
	}
	if err := h.repos.Users.SetStatus(c.Request.Context(), id, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	h.services.Record(currentUser(c).Username, "set_banned", strconv.Itoa(id))
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

type restrictRequest struct {
	Restricted bool `json:"restricted"`
}

func (h *Handler) setRestricted(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req restrictRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	status := greenhouse.StatusActive
	if req.Restricted {
		status = greenhouse.StatusRestricted
	}
	if err := h.repos.Users.SetStatus(c.Request.Context(), id, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	h.services.Record(currentUser(c).Username, "set_restricted", strconv.Itoa(id))
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

func (h *Handler) promote(c *gin.Context) {
	h.setRole(c, greenhouse.RoleAdmin, "promote_user")
}

func (h *Handler) demote(c *gin.Context) {
	h.setRole(c, greenhouse.RoleUser, "demote_user")
}

func (h *Handler) setRole(c *gin.Context, role, action string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.repos.Users.SetRole(c.Request.Context(), id, role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		return
	}
	h.services.Record(currentUser(c).Username, action, strconv.Itoa(id))
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

func (h *Handler) activity24h(c *gin.Context) {
	dataResponse(c, h.services.Last24h())
}

func (h *Handler) pendingRequests(c *gin.Context) {
	dataResponse(c, h.services.Pending())
}

type approveRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) approveRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req approveRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	ticket, ok := h.services.Resolve(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	rec, err := h.repos.Users.GetByUsername(c.Request.Context(), ticket.Username)
	if err != nil || rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := h.services.SetPassword(c.Request.Context(), rec.ID, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set password"})
		return
	}
	h.services.Record(currentUser(c).Username, "approve_password_request", ticket.Username)
	c.JSON(http.StatusOK, gin.H{"message": "password reset approved"})
}

func (h *Handler) rejectRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, found := h.services.Resolve(id); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	h.services.Record(currentUser(c).Username, "reject_password_request", strconv.Itoa(id))
	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}

func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.repos.Alerts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	dataResponse(c, alerts)
}

func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.repos.Alerts.Acknowledge(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert acknowledged"})
}
