package admin

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/lingoletics/core/internal/modules/waitlist"
	"github.com/lingoletics/core/internal/pkg/pagination"
	"github.com/lingoletics/core/internal/pkg/response"
	"go.uber.org/zap"
)

type loginDTO struct {
	Password string `json:"password"`
}

type notifyDTO struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts the admin API. Login is open; everything else sits
// behind authMW, which revalidates the session token per request.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin")
	g.POST("/login", h.login)
	g.GET("/stats", authMW, h.stats)
	g.GET("/subscriptions", authMW, h.subscriptions)
	g.POST("/notify", authMW, h.notify)
}

func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil || dto.Password == "" {
		response.BadRequest(c, "Password is required")
		return
	}

	token, err := h.svc.Login(dto.Password)
	switch {
	case err == nil:
		response.OK(c, gin.H{"success": true, "token": token})
	case errors.Is(err, errWrongPassword):
		response.Unauthorized(c, "Invalid password")
	case errors.Is(err, errHashNotConfigured):
		h.log.Error("admin login unavailable", zap.Error(err))
		response.InternalError(c, "Password verification failed")
	default:
		h.log.Error("admin login failed", zap.Error(err))
		response.InternalError(c, "Login failed")
	}
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.log.Error("stats query failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch stats")
		return
	}
	response.OK(c, stats)
}

func (h *Handler) subscriptions(c *gin.Context) {
	filter := waitlist.FilterAll
	switch c.Query("confirmed") {
	case "true":
		filter = waitlist.FilterConfirmed
	case "false":
		filter = waitlist.FilterUnconfirmed
	}

	q := pagination.FromContext(c)
	subs, total, err := h.svc.store.List(filter, q.Offset(), q.Limit)
	if err != nil {
		h.log.Error("subscription list failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch subscriptions")
		return
	}

	response.OK(c, gin.H{
		"subscriptions": subs,
		"pagination":    q.MetaFor(total),
	})
}

func (h *Handler) notify(c *gin.Context) {
	var dto notifyDTO
	if err := c.ShouldBindJSON(&dto); err != nil || dto.Subject == "" || dto.Message == "" {
		response.BadRequest(c, "Message and subject are required")
		return
	}

	sent, failed, err := h.svc.lifecycle.Broadcast(dto.Subject, dto.Message)
	if err != nil {
		h.log.Error("broadcast failed", zap.Error(err))
		response.InternalError(c, "Failed to send notifications")
		return
	}

	if sent == 0 && failed == 0 {
		response.OK(c, gin.H{"message": "No subscribers to notify", "sent": 0, "failed": 0})
		return
	}

	response.OK(c, gin.H{
		"message": fmt.Sprintf("Notifications sent: %d successful, %d failed", sent, failed),
		"sent":    sent,
		"failed":  failed,
	})
}
