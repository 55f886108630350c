// Package routesはroutingを行います。
package routes

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/handlers"
	"fullstack-todolist/backend/internal/repositories"
	"fullstack-todolist/backend/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(cfg *config.Config, todoRepo repositories.TodoRepository, logger *slog.Logger) *gin.Engine {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), gin.Recovery())

	// CORS対策
	r.Use(cors.New(corsConfig(cfg.CORS)))

	// サービス
	todoService := services.NewTodoService(todoRepo, logger)

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService, logger)
	healthHandler := handlers.NewHealthHandler(todoService)

	// ルーティング
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	if cfg.Auth.Enabled() {
		api.Use(AuthMiddleware(services.NewJWTService(cfg.Auth)))
	}
	{
		api.GET("/todos", todoHandler.GetTodosHandler)
		api.GET("/gettodos", todoHandler.GetTodoPageHandler)
		api.GET("/todos/:id", todoHandler.GetTodoByIDHandler)
		api.POST("/todos", todoHandler.CreateTodoHandler)
		api.PUT("/todos/:id", todoHandler.UpdateTodoHandler)
		api.DELETE("/todos/:id", todoHandler.DeleteTodoHandler)
	}

	return r
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.DefaultConfig()
	origins := config.SplitList(c.AllowedOrigins)
	// "*" と credentials は併用できない
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = c.AllowCredentials
	}
	cc.AllowMethods = config.SplitList(c.AllowedMethods)
	cc.AllowHeaders = config.SplitList(c.AllowedHeaders)
	cc.ExposeHeaders = []string{RequestIDHeader}
	cc.MaxAge = c.MaxAge
	return cc
}
