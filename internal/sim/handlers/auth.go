package handlers

import (
	"errors"
	"net/http"

	"greenhouse_console/internal/sim/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	token, user, err := h.services.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, service.ErrUserExists) {
			h.log.Errorw("register_failed", "username", req.Username, "err", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.services.Record(user.Username, "register", "")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "message": "account created"})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	token, user, err := h.services.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Infow("login_rejected", "username", req.Username, "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	h.services.Record(user.Username, "login", "")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) logout(c *gin.Context) {
	// Tokens are stateless; logout is an audit event.
	if u := currentUser(c); u != nil {
		h.services.Record(u.Username, "logout", "")
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	dataResponse(c, currentUser(c))
}

type forgotPasswordRequest struct {
	Username           string `json:"username" binding:"required"`
	Message            string `json:"message"`
	RememberedPassword string `json:"rememberedPassword"`
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.services.FileRequest(req.Username, req.Message, req.RememberedPassword)
	c.JSON(http.StatusOK, gin.H{"message": "request filed for admin review"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	u := currentUser(c)
	err := h.services.ChangePassword(c.Request.Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
			return
		}
		h.log.Errorw("change_password_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}
	h.services.Record(u.Username, "change_password", "")
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
