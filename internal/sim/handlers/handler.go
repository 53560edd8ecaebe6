package handlers

import (
	"net/http"

	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/sim/hub"
	"greenhouse_console/internal/sim/repository"
	"greenhouse_console/internal/sim/service"

	"github.com/gin-gonic/gin"
)

// Handler wires the simulator's HTTP layer to services, storage and the
// push hub.
type Handler struct {
	services *service.Service
	repos    *repository.Repository
	hub      *hub.Hub
	log      *logger.Logger
}

func NewHandler(services *service.Service, repos *repository.Repository, h *hub.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, repos: repos, hub: h, log: log}
}

// InitRoutes builds the Gin router mirroring the production backend's
// surface.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/logout", h.authRequired, h.logout)
		auth.GET("/me", h.authRequired, h.me)
		auth.PUT("/change-password", h.authRequired, h.changePassword)
	}

	sensors := router.Group("/sensors", h.authRequired)
	{
		sensors.GET("/latest", h.latest)
		sensors.GET("/24h", h.last24h)
		sensors.GET("/date/:date", h.byDate)
		sensors.GET("/export/excel", h.exportSpreadsheet)
		sensors.GET("/events/24h", h.events24h)
	}

	thresholds := router.Group("/thresholds", h.authRequired)
	{
		thresholds.GET("", h.getThresholds)
		thresholds.PUT("", h.updateThresholds)
	}

	manual := router.Group("/manual", h.authRequired)
	{
		manual.POST("/control", h.control)
		manual.POST("/auto", h.resumeAuto)
	}

	admin := router.Group("/admin", h.authRequired, h.adminRequired)
	{
		admin.GET("/users", h.listUsers)
		admin.GET("/users/online", h.listOnline)
		admin.DELETE("/users/:id", h.deleteUser)
		admin.PUT("/users/:id/ban", h.setBanned)
		admin.PUT("/users/:id/restrict", h.setRestricted)
		admin.PUT("/users/:id/promote", h.headAdminRequired, h.promote)
		admin.PUT("/users/:id/demote", h.headAdminRequired, h.demote)
		admin.GET("/activity/24h", h.activity24h)
		admin.GET("/forgot-password/pending", h.pendingRequests)
		admin.POST("/forgot-password/:id/approve", h.headAdminRequired, h.approveRequest)
		admin.POST("/forgot-password/:id/reject", h.headAdminRequired, h.rejectRequest)
		admin.GET("/alerts", h.listAlerts)
		admin.PUT("/alerts/:id/acknowledge", h.acknowledgeAlert)
	}

	settings := router.Group("/settings", h.authRequired)
	{
		settings.PUT("/username", h.updateUsername)
		settings.PUT("/theme", h.updateTheme)
	}

	router.GET("/ws", h.wsConnect)

	return router
}

// bindJSONOrBadRequest binds the body into dst, answering 400 on failure.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func dataResponse(c *gin.Context, v any) {
	c.JSON(http.StatusOK, gin.H{"data": v})
}
