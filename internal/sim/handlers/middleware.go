package handlers

import (
	"net/http"
	"strings"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/session"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "user"

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func (h *Handler) authRequired(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
		return
	}
	userID, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	user, err := h.services.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	if user.Status == greenhouse.StatusBanned {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is banned"})
		return
	}
	c.Set(ctxUserKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *greenhouse.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	return v.(*greenhouse.User)
}

// adminRequired gates on the same capability predicate the console uses.
func (h *Handler) adminRequired(c *gin.Context) {
	if !session.CanAccess(currentUser(c), session.CapAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}

func (h *Handler) headAdminRequired(c *gin.Context) {
	if !session.CanAccess(currentUser(c), session.CapHeadAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "head admin access required"})
		return
	}
	c.Next()
}
