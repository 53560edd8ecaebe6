package handlers

import (
	"net/http"

	greenhouse "greenhouse_console"

	"github.com/gin-gonic/gin"
)

type usernameRequest struct {
	NewUsername string `json:"newUsername" binding:"required"`
}

func (h *Handler) updateUsername(c *gin.Context) {
	var req usernameRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	u := currentUser(c)
	if existing, err := h.repos.Users.GetByUsername(c.Request.Context(), req.NewUsername); err == nil && existing != nil && existing.ID != u.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
		return
	}
	if err := h.repos.Users.SetUsername(c.Request.Context(), u.ID, req.NewUsername); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update username"})
		return
	}
	h.services.Record(req.NewUsername, "update_username", u.Username)
	c.JSON(http.StatusOK, gin.H{"message": "username updated"})
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *Handler) updateTheme(c *gin.Context) {
	var req themeRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	switch req.Theme {
	case greenhouse.ThemeLight, greenhouse.ThemeDark, greenhouse.ThemeAuto:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be light, dark or auto"})
		return
	}
	u := currentUser(c)
	if err := h.repos.Users.SetTheme(c.Request.Context(), u.ID, req.Theme); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update theme"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "theme updated"})
}
