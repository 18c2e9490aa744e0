package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkcore/internal/core"
)

// RoutePrefix is the group every park route is registered under.
const RoutePrefix = "/api/park"

// RegisterRoutes registers the park endpoints on rg.
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, hub *EventHub) {
	zones := rg.Group("/zones")
	{
		zones.POST("", handlers.HandleCreateZone)
		zones.GET("", handlers.HandleListZones)
		zones.GET("/:name", handlers.HandleGetZone)
		zones.PATCH("/:name/toggle", handlers.HandleToggleZone)
		zones.GET("/:name/dinosaurs", handlers.HandleListDinosaurs)
		zones.POST("/:name/dinosaurs", handlers.HandleAdmitDinosaur)
		zones.DELETE("/:name/dinosaurs/:dino", handlers.HandleRemoveDinosaur)
	}

	dinosaurs := rg.Group("/dinosaurs")
	{
		dinosaurs.POST("/move", handlers.HandleMoveDinosaur)
		dinosaurs.GET("/:dino", handlers.HandleGetDinosaur)
		dinosaurs.POST("/:dino/feed", handlers.HandleFeedDinosaur)
		dinosaurs.PATCH("/:dino/health", handlers.HandleSetHealth)
	}

	species := rg.Group("/species")
	{
		species.GET("", handlers.HandleListSpecies)
		species.POST("/compatibility", handlers.HandleCompatibility)
	}

	rg.GET("/status", handlers.HandleStatus)
	if hub != nil {
		rg.GET("/events", hub.Handle)
	}
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger *slog.Logger
	// Hub receives committed changes; nil creates one and subscribes it.
	Hub *EventHub
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer  prometheus.Gatherer
	RateLimit float64
	RateBurst int
}

// NewRouter builds the gin engine serving the park API, health probes and
// metrics.
func NewRouter(svc *core.Service, opts RouterOptions) *gin.Engine {
	RegisterValidators()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewEventHub(logger)
		svc.AddChangeListener(hub)
	}
	handlers := NewHandlers(svc, logger)

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger))
	r.GET("/healthz", handlers.HandleHealth)
	r.GET("/readyz", handlers.HandleReady)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	park := r.Group(RoutePrefix, RateLimit(opts.RateLimit, opts.RateBurst))
	RegisterRoutes(park, handlers, hub)
	return r
}
