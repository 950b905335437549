package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accessapp "github.com/SentinelMesh/AccessGate/pkg/app/access"
	behaviorapp "github.com/SentinelMesh/AccessGate/pkg/app/behavior"
	policyapp "github.com/SentinelMesh/AccessGate/pkg/app/policy"
	"github.com/SentinelMesh/AccessGate/pkg/app/risk"
	"github.com/SentinelMesh/AccessGate/pkg/app/soar"
	threatapp "github.com/SentinelMesh/AccessGate/pkg/app/threat"
	"github.com/SentinelMesh/AccessGate/pkg/app/trust"
	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/infra/actuators"
	"github.com/SentinelMesh/AccessGate/pkg/infra/auditsink"
	"github.com/SentinelMesh/AccessGate/pkg/infra/auth"
	"github.com/SentinelMesh/AccessGate/pkg/infra/behaviorstore"
	"github.com/SentinelMesh/AccessGate/pkg/infra/cache"
	"github.com/SentinelMesh/AccessGate/pkg/infra/database"
	"github.com/SentinelMesh/AccessGate/pkg/infra/devicehistory"
	"github.com/SentinelMesh/AccessGate/pkg/infra/httpx"
	infraLogger "github.com/SentinelMesh/AccessGate/pkg/infra/logger"
	infraPrometheus "github.com/SentinelMesh/AccessGate/pkg/infra/prometheus"
	"github.com/SentinelMesh/AccessGate/pkg/infra/repository"
	"github.com/SentinelMesh/AccessGate/pkg/infra/threatfeed"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()
	ztCfg := config.GetZeroTrustConfig()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// repository
	userRepository := repository.NewUserRepository(db.DB)
	deviceRepository := repository.NewDeviceRepository(db.DB)
	behaviorStore := behaviorstore.NewRedisStore(redisClient, cfg.Engine.Behavior.HistoryBound, logger)
	deviceHistory := devicehistory.NewMemoryStore(cfg.Engine.Device.HistoryBound)

	// declarative policy and playbook definitions
	policies, err := ztCfg.BuildPolicies()
	if err != nil {
		logger.Fatalf("Failed to build policies: %v", err)
	}
	playbooks, err := ztCfg.BuildPlaybooks()
	if err != nil {
		logger.Fatalf("Failed to build playbooks: %v", err)
	}

	// audit pipeline
	var baseSink audit.Sink = auditsink.NewLogSink(logger)
	if cfg.Kafka.Enabled {
		kafkaSink, err := auditsink.NewKafkaSink(cfg.Kafka.Host, cfg.Kafka.Port, cfg.Kafka.Topic)
		if err != nil {
			logger.Fatalf("Failed to initialize kafka audit sink: %v", err)
		}
		defer kafkaSink.Close()
		baseSink = kafkaSink
	}
	asyncSink := auditsink.NewAsyncSink(baseSink, 1000, logger)
	defer asyncSink.Close()

	// signal collectors
	profiler := behaviorapp.NewProfiler(behaviorStore, cfg.Engine.Behavior, logger)
	correlator := threatapp.NewCorrelator(logger)
	totpVerifier := auth.NewTOTPVerifier()
	assertionManager := auth.NewAssertionManager(cfg.Server.SecretKey, cfg.Server.Issuer)
	identityVerifier := trust.NewIdentityVerifier(userRepository, totpVerifier, assertionManager, logger)
	deviceAssessor := trust.NewDeviceAssessor(deviceRepository, deviceHistory, cfg.Engine.Device, logger)
	riskEngine := risk.NewEngine(cfg.Engine.RiskWeights)
	decisionPoint := policyapp.NewDecisionPoint(policies, access.Decision(cfg.Engine.DefaultAction))

	// threat feed ingestion
	feedBreaker := httpx.NewCircuitBreaker("threat_feed", time.Minute, cfg.Engine.Feed.MaxFailures)
	feedClient := threatfeed.NewClient(cfg.Engine.Feed.Timeout, feedBreaker)
	ingester := threatapp.NewIngester(feedClient, correlator, cfg.Engine.Feed.Sources, cfg.Engine.Feed.Interval, logger)
	go ingester.Run(ctx)

	// response orchestration
	registry := soar.NewRegistry()
	register := func(a soar.Actuator) {
		if err := registry.Register(a); err != nil {
			logger.Fatalf("Failed to register actuator: %v", err)
		}
	}
	register(actuators.NewSendAlert(cfg.Engine.Notifications.AlertWebhookURL, logger))
	register(actuators.NewEscalateIncident(cfg.Engine.Notifications.EscalationWebhookURL, logger))
	register(actuators.NewBlockIP(redisClient, logger))
	register(actuators.NewDisableUser(userRepository, logger))
	register(actuators.NewQuarantineDevice(deviceRepository, logger))
	register(actuators.NewCollectForensics(logger))

	orchestrator := soar.NewOrchestrator(playbooks, registry, logger)
	worker := soar.NewWorker(orchestrator, asyncSink, cfg.Engine.Response.QueueSize, logger)
	go worker.Run(ctx)

	coordinator := accessapp.NewCoordinator(
		profiler,
		correlator,
		identityVerifier,
		deviceAssessor,
		riskEngine,
		decisionPoint,
		asyncSink,
		worker,
		userRepository,
		deviceHistory,
		cfg.Engine.AlertThreshold,
		logger,
	)

	// Requests arrive as newline-delimited JSON on stdin, decisions go to
	// stdout. Enforcement points integrate through this pipe.
	go runEvaluationLoop(ctx, coordinator, os.Stdin, os.Stdout, logger)

	metricsServer := startMetricsServer(cfg.Server.MetricsPort, logger)

	logger.WithField("metrics_port", cfg.Server.MetricsPort).Info("access decision engine started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down engine...")
	cancel()
	worker.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		fmt.Println("error shutting down metrics server:", err)
	}
	fmt.Println("engine gracefully stopped")
}

func runEvaluationLoop(ctx context.Context, coordinator accessapp.Coordinator, in io.Reader, out io.Writer, logger *logrus.Logger) {
	// One request per line. A malformed line is skipped; the scanner
	// always advances to the next line, so bad input never stalls intake.
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req access.Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.WithError(err).Warn("failed to decode access request")
			continue
		}
		if req.Context.Timestamp.IsZero() {
			req.Context.Timestamp = time.Now()
		}

		result, err := coordinator.Evaluate(ctx, req)
		if err != nil {
			logger.WithError(err).WithField("request_id", req.ID).Error("evaluation failed")
			continue
		}
		if err := encoder.Encode(result); err != nil {
			logger.WithError(err).Warn("failed to encode decision result")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.WithError(err).Warn("evaluation input error")
		return
	}
	logger.Info("evaluation input closed")
}

func startMetricsServer(port int, logger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(infraPrometheus.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Metrics server failed: %v", err)
		}
	}()
	return srv
}
