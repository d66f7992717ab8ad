package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teamup-campus/teamup/internal/api/handlers"
	"github.com/teamup-campus/teamup/internal/api/middleware"
)

type Deps struct {
	Auth        middleware.JWTConfig
	Profile     *handlers.ProfileHandler
	User        *handlers.UserHandler
	Post        *handlers.PostHandler
	Interaction *handlers.InteractionHandler
	Recommend   *handlers.RecommendHandler
	Chat        *handlers.ChatHandler
	WS          *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.Auth))

	auth.GET("/me/onboarding", d.User.Onboarding)
	auth.GET("/me/post", d.Post.Latest)

	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)
	auth.GET("/profiles/:user_id", d.Profile.Get)

	auth.GET("/posts", d.Post.Feed)
	auth.POST("/posts", d.Post.Create)
	auth.GET("/posts/:post_id", d.Post.Get)
	auth.PUT("/posts/:post_id", d.Post.Update)
	auth.DELETE("/posts/:post_id", d.Post.Delete)

	auth.POST("/interactions", d.Interaction.Create)

	auth.GET("/recommend", d.Recommend.Recommend)
	auth.POST("/recommend", d.Recommend.Recommend)

	auth.POST("/chats", d.Chat.Open)
	auth.GET("/chats", d.Chat.List)
	auth.GET("/chats/:chat_id/messages", d.Chat.Messages)
	auth.POST("/chats/:chat_id/messages", d.Chat.Send)

	// WebSocket
	auth.GET("/ws/chats/:chat_id", d.WS.ChatWS)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/recommendations/:user_id", d.Recommend.History)
}
