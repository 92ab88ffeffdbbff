package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay-lk/edupay/internal/interfaces/http/handlers"
	"github.com/edupay-lk/edupay/internal/interfaces/http/middleware"
	"github.com/edupay-lk/edupay/internal/shared/config"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// Router configures the gin engine and the API surface.
type Router struct {
	engine             *gin.Engine
	claimHandler       *handlers.ClaimHandler
	bankWebhookHandler *handlers.BankWebhookHandler
}

func NewRouter(
	cfg *config.ServerConfig,
	claimHandler *handlers.ClaimHandler,
	bankWebhookHandler *handlers.BankWebhookHandler,
	log logger.Interface,
) *Router {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	return &Router{
		engine:             engine,
		claimHandler:       claimHandler,
		bankWebhookHandler: bankWebhookHandler,
	}
}

// SetupRoutes registers the API surface.
func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	{
		payments := api.Group("/payments")
		{
			payments.POST("", r.claimHandler.SubmitClaim)
			payments.GET("", r.claimHandler.ListAllClaims)
			payments.GET("/user/:userId", r.claimHandler.ListUserClaims)
			payments.PUT("/:id/status", r.claimHandler.UpdateClaimStatus)
		}

		bank := api.Group("/bank-messages")
		{
			bank.POST("", r.bankWebhookHandler.ReceiveMessage)
			bank.GET("", r.bankWebhookHandler.ListRecent)
		}
	}
}

// Engine exposes the configured gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
