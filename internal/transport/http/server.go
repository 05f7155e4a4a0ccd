package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/auth"
	"github.com/konect-chat/konect-server/internal/chat"
	"github.com/konect-chat/konect-server/internal/config"
	"github.com/konect-chat/konect-server/internal/store"
)

// NewServer builds the HTTP server with the REST API and the websocket
// relay route.
func NewServer(chatService *chat.Service, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	authHandlers := NewAuthHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(chatService, logger)
	messageHandlers := NewMessageHandlers(chatService, logger)
	uploadHandlers := NewUploadHandlers(st, cfg.UploadDir, logger)
	wsHandler := NewWSHandler(chatService, cfg, logger)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandlers.Register)
		api.POST("/auth/login", authHandlers.Login)

		protected := api.Group("")
		protected.Use(AuthMiddleware(authService, logger))
		{
			protected.GET("/rooms", roomHandlers.ListRooms)
			protected.POST("/rooms", roomHandlers.CreateRoom)
			protected.GET("/rooms/:room_id/messages", messageHandlers.ListMessages)
			protected.POST("/rooms/:room_id/messages", messageHandlers.SendMessage)
			protected.POST("/upload", uploadHandlers.Upload)
			protected.GET("/files/:file_id", uploadHandlers.Download)
		}
	}

	ws := router.Group("/ws")
	ws.Use(AuthMiddleware(authService, logger))
	ws.GET("/:room_id", wsHandler.Serve)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
