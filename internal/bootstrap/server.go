package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/Yashchoudhary3/flight-app/api"
	"github.com/Yashchoudhary3/flight-app/config"
	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
	Users    *api.UserHandler
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, verifier auth.Verifier, h Handlers) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, verifier, h),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newRouter(cfg *config.Config, verifier auth.Verifier, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	authMW := api.Auth(verifier)
	adminMW := api.RequireRole(domain.RoleAdmin)

	root := router.Group("/api")
	h.Flights.Register(root.Group("/flights"), authMW, adminMW)
	h.Bookings.Register(root.Group("/bookings"), authMW, adminMW)
	h.Users.Register(root.Group("/users"), authMW, adminMW)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
