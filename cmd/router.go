package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"PokerRooms/config"
	"PokerRooms/internal/auth"
	"PokerRooms/internal/game/manager"
	"PokerRooms/internal/matchmaker"
	"PokerRooms/internal/middleware"
	"PokerRooms/internal/websocket"
)

// queryIdentity 本地调试：未启用认证时用 ?userId= 作为身份
func queryIdentity(c *gin.Context) {
	if id := c.Query("userId"); id != "" {
		c.Set(middleware.ContextAddress, id)
	}
	c.Next()
}

func newRouter(cfg *config.Config, hub *websocket.Hub, mgr *manager.GameManager, mm *matchmaker.Service, authH *auth.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": mgr.Rooms()})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/nonce", authH.GetNonce)
		authGroup.POST("/nonce", authH.PostNonce)
		authGroup.POST("/login", authH.Login)
	}

	var guard gin.HandlerFunc = queryIdentity
	if cfg.Auth.Required {
		guard = middleware.JwtAuthMiddleware([]byte(cfg.JWT.Secret))
	}
	api := r.Group("/", guard)
	{
		api.GET("/ws", websocket.ServeWS(hub, !cfg.Auth.Required))

		rooms := manager.NewHandler(mgr)
		api.GET("/rooms/:id", rooms.Get)
		api.DELETE("/rooms/:id", rooms.Delete)

		mh := matchmaker.NewHandler(mm)
		api.POST("/match/join", mh.Join)
		api.POST("/match/cancel", mh.Cancel)
	}
	return r
}
