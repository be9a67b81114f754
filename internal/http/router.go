package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/tasktracker/internal/auth"
	"github.com/geocoder89/tasktracker/internal/http/handlers"
	"github.com/geocoder89/tasktracker/internal/http/middlewares"
	"github.com/geocoder89/tasktracker/internal/observability"
	"github.com/geocoder89/tasktracker/internal/proxy"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/geocoder89/tasktracker/internal/security"
	"github.com/geocoder89/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Env   string
	Store repo.Store
	JWT   *auth.Manager
	// Hasher defaults to bcrypt.DefaultCost.
	Hasher *security.Hasher

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// RateCounter nil means in-process counters.
	RateCounter        middlewares.Counter
	RateLimitPerMinute int
	CORSAllowedOrigins []string

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error
}

func setMode(env string) {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
}

func baseEngine(log *slog.Logger, service string, prom *observability.Prom, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(service))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// NewRouter builds the task API.
func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	setMode(d.Env)
	r := baseEngine(log, "tasktracker-api", d.Prom, d.Gatherer)

	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	hasher := d.Hasher
	if hasher == nil {
		hasher = security.NewHasher(0)
	}

	counter := d.RateCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	limiter := middlewares.NewRateLimiter(counter, d.RateLimitPerMinute, time.Minute, log)

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up services
	taskSvc := service.NewTaskService(d.Store, log)
	labelSvc := service.NewLabelService(d.Store, log)
	regSvc := service.NewRegistrationService(d.Store, hasher, log)

	accountsHandler := handlers.NewAccountsHandler(regSvc, d.JWT, log)
	tasksHandler := handlers.NewTasksHandler(taskSvc, log)
	labelsHandler := handlers.NewLabelsHandler(labelSvc, log)

	authMW := middlewares.NewAuthMiddleware(d.JWT)

	// open endpoints
	open := r.Group("/")
	open.Use(middlewares.RequireJSON())
	open.POST("/register/", limiter.RateLimiterMiddleware("register", middlewares.KeyByIP), accountsHandler.Register)
	open.POST("/auth/login", limiter.RateLimiterMiddleware("login", middlewares.KeyByIP), accountsHandler.Login)

	api := r.Group("/")
	api.Use(authMW.RequireAuth(), middlewares.RequireJSON())
	{
		api.GET("/tasks/", tasksHandler.List)
		api.POST("/tasks/", tasksHandler.Create)
		api.GET("/tasks/:id/", tasksHandler.Get)
		api.PUT("/tasks/:id/", tasksHandler.Replace)
		api.PATCH("/tasks/:id/", tasksHandler.Patch)
		api.DELETE("/tasks/:id/", tasksHandler.Delete)

		api.GET("/labels/", labelsHandler.List)
		api.POST("/labels/", labelsHandler.Create)
		api.GET("/labels/:id/", labelsHandler.Get)
		api.PUT("/labels/:id/", labelsHandler.Replace)
		api.PATCH("/labels/:id/", labelsHandler.Patch)
		api.DELETE("/labels/:id/", labelsHandler.Delete)
	}

	return r
}

type ProxyDeps struct {
	Env      string
	Upstream proxy.Upstream
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

// NewProxyRouter builds the read-only proxy in front of the task API.
func NewProxyRouter(log *slog.Logger, d ProxyDeps) *gin.Engine {
	setMode(d.Env)
	r := baseEngine(log, "tasktracker-proxy", d.Prom, d.Gatherer)

	h := handlers.NewHealthHandler(nil)
	r.GET("/healthz", h.Healthz)

	p := proxy.NewHandler(d.Upstream, log)
	r.GET("/", p.Root)
	r.GET("/tasks", p.Tasks)
	r.GET("/labels/", p.Labels)

	return r
}
