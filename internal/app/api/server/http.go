package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cerebra-app/checkout/docs"
	"github.com/cerebra-app/checkout/internal/app/api/handlers"
	mw "github.com/cerebra-app/checkout/internal/app/api/middleware"
	"github.com/cerebra-app/checkout/internal/app/service/checkout"
	"github.com/cerebra-app/checkout/internal/app/service/identity"
	"github.com/cerebra-app/checkout/internal/app/service/receipt"
	"github.com/cerebra-app/checkout/internal/app/service/reconcile"
	"github.com/cerebra-app/checkout/internal/app/service/statistics"
	"github.com/cerebra-app/checkout/internal/app/service/transaction"
	"github.com/cerebra-app/checkout/internal/platform/whop"
	cfgpkg "github.com/cerebra-app/checkout/pkg/config"
	metrics "github.com/cerebra-app/checkout/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Engine   *gin.Engine
	Whop     *whop.Client
	Identity *identity.Service
	Checkout checkout.Manager
	Webhook  reconcile.Processor
	Txns     *transaction.Service
	Receipt  *receipt.Service
	Stats    *statistics.Service
}

func registerRoutes(d routeDeps) {
	r := d.Engine
	log := d.Log

	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Provider webhooks keep the provider's ack contract, no response envelope.
	webhooks := r.Group("/webhooks")
	webhooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(webhooks, log, d.Webhook)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	handlers.RegisterCheckoutRoutes(apiV1, log, d.Checkout, d.Identity, d.Whop.PlanID())
	handlers.RegisterSessionRoutes(apiV1, log, d.Checkout, d.Identity)
	handlers.RegisterTransactionRoutes(apiV1, log, d.Txns, d.Receipt)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), log, d.Txns, d.Stats, d.Whop)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
