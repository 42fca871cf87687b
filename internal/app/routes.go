package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingoletics/core/internal/middleware"
	"github.com/lingoletics/core/internal/modules/admin"
	"github.com/lingoletics/core/internal/modules/waitlist"
	"github.com/lingoletics/core/internal/pkg/mail"
	"github.com/lingoletics/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	sender := mail.New(mail.Config{
		Enable:    a.cfg.Mail.Enable,
		Host:      a.cfg.Mail.Host,
		Port:      a.cfg.Mail.Port,
		User:      a.cfg.Mail.User,
		Pass:      a.cfg.Mail.Pass,
		From:      a.cfg.Mail.From,
		FromName:  a.cfg.Mail.FromName,
		ReplyTo:   a.cfg.Mail.ReplyTo,
		UseResend: a.cfg.Mail.ResendKey != "",
		ResendKey: a.cfg.Mail.ResendKey,
	})

	store := waitlist.NewStore(a.db)
	lifecycle := waitlist.NewService(store, sender, a.cfg.WebURL, a.logger)

	var rlMW gin.HandlerFunc
	if a.rc != nil {
		rlMW = middleware.RateLimit(a.rc.Raw())
	}

	root := r.Group("")
	api := r.Group("/api")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})
	api.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	waitlist.NewHandler(lifecycle, a.cfg.WebURL, a.logger).RegisterRoutes(root, api, rlMW)

	adminSvc := admin.NewService(store, lifecycle, a.cfg.AdminPassHash)
	admin.NewHandler(adminSvc, a.logger).RegisterRoutes(api, middleware.AdminAuth())
}
