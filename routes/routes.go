package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lingochat/auth"
	"lingochat/handlers"
	"lingochat/middleware"
	"lingochat/ws"
)

// SetupRouter builds the full HTTP surface: public auth routes, the
// protected REST API and the two websocket endpoints. handlers.Init must
// run before this.
func SetupRouter(manager *auth.Manager, gateway *ws.Gateway, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/api/register", handlers.Register)
	router.POST("/api/login", handlers.Login)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(manager))

	protected.POST("/chats", handlers.CreateChat)
	protected.GET("/chats", handlers.GetChats)
	protected.GET("/messages", handlers.GetMessages)
	protected.GET("/settings", handlers.GetSettings)
	protected.PUT("/settings", handlers.UpdateSettings)

	// websocket endpoints authenticate during the handshake themselves
	router.GET("/ws/chat", gateway.HandleChat)
	router.GET("/ws/autocomplete", gateway.HandleAutocomplete)

	return router
}
