package app

import (
	"github.com/gin-contrib/cors"
	"github.com/lingoletics/core/internal/config"
)

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOrigins = cfg.AllowedOrigins
	} else {
		c.AllowOriginFunc = func(origin string) bool { return true }
	}
	return c
}
