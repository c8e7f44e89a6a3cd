package router

import (
	"net/http"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware applied to every versioned API route
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name   string
	prefix string
	routes []routeDefinition
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) add(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPut, path, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPatch, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodDelete, path, handlers)
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Options configures the HTTP engine
type Options struct {
	ServiceName    string
	Logger         *zap.Logger
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        bool
	TracerProvider trace.TracerProvider
	// Meter enables HTTP metrics when set
	Meter          metric.Meter
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
}

// Handlers groups the HTTP handlers served by the engine
type Handlers struct {
	System    *handler.SystemHandler
	Ledger    *handler.LedgerHandler
	Sales     *handler.SalesHandler
	Purchases *handler.PurchaseHandler
	Products  *handler.ProductHandler
}

// NewEngine builds the gin engine with the middleware chain and every ledger route
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: opts.ServiceName,
			Enabled:     opts.Tracing,
			Provider:    opts.TracerProvider,
		}),
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(opts.Meter, log),
		middleware.SpanErrorMarker(),
	)

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := []gin.HandlerFunc{
		middleware.Actor(),
		middleware.SpanAttributes(),
		middleware.BodyLimit(opts.MaxBodySize),
	}
	if opts.Idempotency != nil {
		api = append(api, middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL, log))
	}

	r := NewRouter(engine, WithAPIMiddleware(api...))

	r.Register(NewDomainGroup("batches", "/batches").
		POST("", h.Ledger.CreateBatch).
		PATCH("/:id", h.Ledger.RenameBatch).
		GET("/:id/stock", h.Ledger.GetStock).
		GET("/:id/reconcile", h.Ledger.Reconcile))

	r.Register(NewDomainGroup("inventory", "/inventory").
		POST("/receive", h.Ledger.Receive).
		POST("/adjust", h.Ledger.Adjust).
		POST("/allocate", h.Ledger.Allocate).
		GET("/movements", h.Ledger.ListMovements))

	r.Register(NewDomainGroup("sales", "/sales").
		POST("", h.Sales.Create).
		GET("/:id", h.Sales.Get).
		PUT("/:id", h.Sales.Update).
		DELETE("/:id", h.Sales.Delete))

	r.Register(NewDomainGroup("purchases", "/purchases").
		POST("", h.Purchases.Create).
		GET("/:id", h.Purchases.Get).
		PUT("/:id", h.Purchases.Update).
		DELETE("/:id", h.Purchases.Delete))

	r.Register(NewDomainGroup("products", "/products").
		PUT("/by-sku/:sku", h.Products.Register).
		GET("/:id", h.Products.Get))

	r.Setup()
	return engine, nil
}
