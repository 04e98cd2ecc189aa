package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-agent/docs"
	"github.com/johnquangdev/meeting-agent/internal/adapter/handler"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/graph"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/llm"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/oauth"
	httpmw "github.com/johnquangdev/meeting-agent/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/messaging"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/telemetry"
	"github.com/johnquangdev/meeting-agent/internal/usecase/actions"
	"github.com/johnquangdev/meeting-agent/internal/usecase/evaluation"
	"github.com/johnquangdev/meeting-agent/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-agent/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
	pkgmw "github.com/johnquangdev/meeting-agent/pkg/middleware"
	"github.com/johnquangdev/meeting-agent/pkg/pii"
	"github.com/johnquangdev/meeting-agent/pkg/resilience"
	pkgvalidator "github.com/johnquangdev/meeting-agent/pkg/validator"
)

const tracerName = "github.com/johnquangdev/meeting-agent"

// @title           Meeting Agent API
// @version         1.0
// @description     Extracts decisions, action items and risks from meeting transcripts and optionally executes them against Planner and Teams.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an Entra ID access token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	log.Println("🔧 Initializing dependencies...")

	// Telemetry
	log.Println("🔭 Initializing telemetry...")
	providers, err := telemetry.Init(rootCtx, cfg.Telemetry, logger)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	tracer := otel.Tracer(tracerName)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(cfg.Telemetry.MetricsNamespace, registry, logger)
	filter := pii.NewFilter(cfg.Telemetry.PIIFilterEnabled)

	// Resilience
	log.Println("🛡️  Initializing circuit breakers...")
	breakerConfig := func(name string, timeout time.Duration) resilience.BreakerConfig {
		bc := resilience.DefaultBreakerConfig(name)
		bc.FailureThreshold = cfg.Resilience.BreakerFailureThreshold
		bc.SuccessThreshold = cfg.Resilience.BreakerSuccessThreshold
		bc.ResetTimeout = cfg.Resilience.BreakerResetTimeout
		bc.Timeout = timeout
		bc.OnStateChange = func(name string, from, to resilience.State) {
			collector.RecordBreakerState(name, from.String(), to.String(), int(to))
		}
		return bc
	}
	breakers := resilience.NewBreakers(
		breakerConfig("extraction", cfg.Resilience.ExtractionTimeout),
		breakerConfig("actions", cfg.Resilience.ActionTimeout),
		logger,
	)
	retryCfg := resilience.RetryConfig{
		MaxAttempts:       cfg.Resilience.RetryMaxAttempts,
		InitialDelay:      cfg.Resilience.RetryInitialDelay,
		MaxDelay:          cfg.Resilience.RetryMaxDelay,
		BackoffMultiplier: cfg.Resilience.RetryBackoffMultiplier,
	}

	// Cache
	var store cache.Store
	if cfg.Redis.Host != "" {
		log.Println("📦 Connecting to Redis...")
		store, err = cache.NewRedisStore(rootCtx, cache.RedisOptions{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "meeting-agent:",
		}, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	} else {
		log.Println("⚠️  Redis not configured, using in-memory cache")
		store = cache.NewMemoryStore(time.Minute)
	}
	defer store.Close()

	// Auth
	var authMW echo.MiddlewareFunc
	if cfg.Auth.Enabled {
		log.Println("🔑 Initializing token verifier...")
		keys := jwt.NewKeySet(cfg.JWKSURL(), store, cfg.Auth.JWKSCacheTTL, logger)
		verifier := jwt.NewVerifier(keys, jwt.VerifierConfig{
			Issuer:    cfg.Issuer(),
			Audiences: audiences(cfg.Auth),
			Leeway:    cfg.Auth.ClockSkew,
			Policy: jwt.Policy{
				AllowedAppIDs:      cfg.Auth.AllowedAppIDs,
				RequiredRoles:      cfg.Auth.RequiredRoles,
				RequiredScopes:     cfg.Auth.RequiredScopes,
				RoleSatisfiesScope: cfg.Auth.RoleSatisfiesScope,
			},
		})
		authMW = httpmw.EchoAuth(verifier, logger)
	} else {
		log.Println("⚠️  Bearer authentication DISABLED")
	}

	// Extraction
	log.Println("🤖 Initializing extraction service...")
	extractor, err := extraction.NewService(
		llm.NewClient(cfg.LLM, cfg.LLM.DefaultModel, logger),
		breakers.Extraction,
		logger,
		extraction.WithRetryConfig(retryCfg),
		extraction.WithPIIFilter(filter),
		extraction.WithMetrics(collector),
		extraction.WithTracer(tracer),
	)
	if err != nil {
		log.Fatalf("Failed to initialize extraction service: %v", err)
	}

	// Actions
	var executor actions.Executor
	if cfg.Graph.Enabled() {
		log.Println("📋 Connecting to Microsoft Graph...")
		graphClient := graph.NewClient(cfg.Graph, oauth.NewGraphHTTPClient(rootCtx, cfg.Graph, cfg.Resilience.ActionTimeout), logger)
		opts := []actions.GraphOption{
			actions.WithRetry(retryCfg),
			actions.WithExecutorMetrics(collector),
			actions.WithExecutorTracer(tracer),
		}
		if cfg.Graph.TeamID != "" && cfg.Graph.ChannelID != "" {
			opts = append(opts, actions.WithDefaultChannel(entities.ChannelRef{TeamID: cfg.Graph.TeamID, ChannelID: cfg.Graph.ChannelID}))
		}
		executor = actions.NewGraphExecutor(graphClient, breakers.Actions, logger, opts...)
	} else {
		log.Println("⚠️  Graph not configured, actions run in RECORDING mode")
		executor = actions.NewRecordingExecutor(logger, collector)
	}

	// Messaging
	meetingOpts := []meeting.Option{
		meeting.WithPIIFilter(filter),
		meeting.WithMetrics(collector),
		meeting.WithTracer(tracer),
	}
	if cfg.NATS.URL != "" {
		log.Println("📨 Connecting to NATS...")
		publisher, err := messaging.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
		meetingOpts = append(meetingOpts, meeting.WithPublisher(publisher))
	}

	validate := pkgvalidator.New()
	meetingService := meeting.NewService(extractor, executor, validate, logger, meetingOpts...)

	// Evaluation
	evalOpts := []evaluation.Option{evaluation.WithTracer(tracer)}
	if cfg.Storage.Endpoint != "" {
		log.Println("🗄️  Connecting to MinIO...")
		archive, err := storage.NewMinIOClient(rootCtx, cfg.Storage, logger)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		evalOpts = append(evalOpts, evaluation.WithArchiver(archive))
	}
	factory := func(model string) (evaluation.Extractor, error) {
		breaker := resilience.NewCircuitBreaker(breakerConfig("evaluation:"+model, cfg.Resilience.ExtractionTimeout), logger)
		svc, err := extraction.NewService(
			llm.NewClient(cfg.LLM, model, logger),
			breaker,
			logger,
			extraction.WithRetryConfig(retryCfg),
			extraction.WithPIIFilter(filter),
			extraction.WithMetrics(collector),
			extraction.WithTracer(tracer),
		)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	evaluationService := evaluation.NewService(factory, cfg.LLM.Models, logger, evalOpts...)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = false
	e.Validator = validate
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger, cfg.IsProduction())

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, pkgmw.HeaderTraceID},
	}))
	e.Use(pkgmw.RequestContext(tracer, collector, logger))

	log.Println("🛣️  Setting up routes...")
	messages := handler.NewMessages(meetingService, authMW, cfg.Server.RequestTimeout, cfg.IsProduction(), logger)
	evaluations := handler.NewEvaluations(evaluationService, cfg.Server.RequestTimeout, cfg.IsProduction(), logger)
	router := handler.NewRouter(cfg, messages, evaluations, breakers, registry, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Printf("❌ Telemetry shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// audiences accepts the configured audience plus both forms of the app id
func audiences(a config.AuthConfig) []string {
	var out []string
	for _, aud := range []string{a.Audience, a.ClientID, "api://" + a.ClientID} {
		if aud != "" && aud != "api://" {
			out = append(out, aud)
		}
	}
	return out
}
