package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	"github.com/rafaelleal24/product-catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/product-catalog/internal/adapters/http/middleware"
	"github.com/rafaelleal24/product-catalog/internal/adapters/metrics"
)

type Router struct {
	healthController  *controllers.HealthController
	productController *controllers.ProductController
	rateLimiter       middleware.RateLimiter
	metrics           *metrics.Metrics
	catalog           config.CatalogConfig
}

func NewRouter(
	healthController *controllers.HealthController,
	productController *controllers.ProductController,
	rateLimiter middleware.RateLimiter,
	metrics *metrics.Metrics,
	catalog config.CatalogConfig,
) *Router {
	return &Router{
		healthController:  healthController,
		productController: productController,
		rateLimiter:       rateLimiter,
		metrics:           metrics,
		catalog:           catalog,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	router.Use(middleware.RequestID())
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
	}
	router.Use(middleware.LogRequest("/metrics", "/health"))

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}
	router.GET("/", controllers.Root)
	router.GET("/health", r.healthController.Health)
	router.GET("/swagger/doc.json", serveOpenAPI)

	api := router.Group("/api")
	{
		api.POST("/products",
			middleware.RateLimit(r.rateLimiter, r.catalog.CreateRateLimit, r.catalog.RateLimitWindow),
			r.productController.CreateProduct,
		)
		api.GET("/products", r.productController.GetAll)
	}
}

func serveOpenAPI(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

func (r *Router) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	r.SetupRoutes(engine)
	return engine
}

func (r *Router) ListenAndServe(ctx context.Context, cfg config.HTTPConfig) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.BindInterface, cfg.Port),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
