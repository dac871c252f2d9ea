package handlers

import (
	"github.com/SscSPs/fundraising_app/cmd/docs"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/middleware"
	"github.com/SscSPs/fundraising_app/internal/platform/config"
	"github.com/SscSPs/fundraising_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// writeLimit, when non-nil, rate-limits the routes that reach the ledger.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	writeLimit gin.HandlerFunc,
) {
	r.GET("/", getHome)
	r.GET("/health", getHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	setupAPIV1Routes(r, cfg, services, writeLimit)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	writeLimit gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1")

	writeMiddleware := make([]gin.HandlerFunc, 0, 2)
	if writeLimit != nil {
		writeMiddleware = append(writeMiddleware, writeLimit)
	}
	writeMiddleware = append(writeMiddleware, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	RegisterCampaignRoutes(v1, services.Campaign, writeMiddleware...)

	operatorMiddleware := append(append([]gin.HandlerFunc{}, writeMiddleware...), middleware.RequireOperator(cfg.OperatorAddresses))
	RegisterReceiptRoutes(v1, services.Campaign, operatorMiddleware...)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
