package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pos-service/internal/ws"
)

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
	Hub         *ws.Hub
	Log         *logrus.Entry
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Log), CORS(cfg.CORSOrigins))

	h.RegisterRoutes(r, cfg.JWTSecret)
	if cfg.Hub != nil {
		r.GET("/ws/stations/:station", ws.ServeWS(cfg.Hub, cfg.JWTSecret))
	}
	return r
}
