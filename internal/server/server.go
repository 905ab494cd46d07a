package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// NewServer wires the middleware stack and the recipe routes. The rate
// limiter is optional; passing nil disables it (tests, local runs without
// Redis).
func NewServer(recipes *service.RecipeService, queries *service.QueryService, auth *service.AuthService, limiter *middleware.RateLimiter, allowedOrigins []string) *Server {
	router := gin.Default()
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	recipeHandler := api.NewRecipeHandler(recipes, queries, auth, limiter)
	recipeHandler.RegisterRoutes(router.Group("/api/v1"))

	return &Server{router: router}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving on the given port and blocks until the listener stops.
func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
