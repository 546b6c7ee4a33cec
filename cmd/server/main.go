package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"biometric-attendance/backend/internal/audit"
	auditrepo "biometric-attendance/backend/internal/audit/repository"
	"biometric-attendance/backend/internal/biometric/face"
	"biometric-attendance/backend/internal/biometric/fingerprint"
	"biometric-attendance/backend/internal/checkin"
	"biometric-attendance/backend/internal/config"
	courserepo "biometric-attendance/backend/internal/course/repository"
	"biometric-attendance/backend/internal/db"
	healthhandler "biometric-attendance/backend/internal/health/handler"
	identityrepo "biometric-attendance/backend/internal/identity/repository"
	"biometric-attendance/backend/internal/policy/engine"
	presencerepo "biometric-attendance/backend/internal/presence/repository"
	"biometric-attendance/backend/internal/report"
	"biometric-attendance/backend/internal/security"
	"biometric-attendance/backend/internal/server"
	"biometric-attendance/backend/internal/server/httpapi"
	"biometric-attendance/backend/internal/server/middleware"
	sessionrepo "biometric-attendance/backend/internal/session/repository"
	sessionservice "biometric-attendance/backend/internal/session/service"
	"biometric-attendance/backend/internal/telemetry"
	telemetryotel "biometric-attendance/backend/internal/telemetry/otel"
	"biometric-attendance/backend/internal/telemetry/producer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}
	if cfg.JWTPublicKey == "" {
		log.Fatal("config: JWT_PUBLIC_KEY must be set to validate lecturer tokens")
	}
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, publicKey, err := security.LoadKeys(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	events := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		events = append(events, kafkaProducer)
		log.Printf("events: publishing to kafka topic %s", cfg.EventsTopic)
	}

	courses := courserepo.NewPostgresRepository(conn)
	students := identityrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	presence := presencerepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIP)

	var policy string
	if cfg.CoursePolicyFile != "" {
		raw, err := os.ReadFile(cfg.CoursePolicyFile)
		if err != nil {
			log.Fatalf("policy: read %s: %v", cfg.CoursePolicyFile, err)
		}
		policy = string(raw)
	}
	authz, err := engine.NewOPAAuthorizer(ctx, courses, policy)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	var pollers sessionservice.PollerControl
	var supervisor *fingerprint.Supervisor
	if cfg.FingerprintDeviceURL != "" {
		scanner := fingerprint.NewScanner(cfg.FingerprintDeviceURL, cfg.FingerprintDevicePath, cfg.DeviceTimeout())
		supervisor = fingerprint.NewSupervisor(scanner, cfg.PollInterval(), cfg.PollerLease())
		pollers = supervisor
		log.Printf("fingerprint: polling %s every %s", cfg.FingerprintDeviceURL, cfg.PollInterval())
	} else {
		log.Println("fingerprint: FINGERPRINT_DEVICE_URL not set; background polling disabled")
	}

	var matcher sessionservice.FaceMatcher
	if cfg.FaceRecognizerCmd != "" {
		matcher = face.NewMatcher(&face.ExecRecognizer{
			Command: cfg.FaceRecognizerCmd,
			Args:    cfg.RecognizerArgs(),
			Timeout: cfg.RecognizerTimeout(),
		}, cfg.FaceMaxImageBytes, cfg.FaceTempDir)
	}

	manager := sessionservice.NewManager(sessionservice.Deps{
		Sessions:     sessions,
		Attendees:    presence,
		Authorizer:   authz,
		Processor:    checkin.NewProcessor(sessions, students, presence, events),
		Pollers:      pollers,
		Matcher:      matcher,
		Audit:        auditLogger,
		Events:       events,
		StrictMethod: cfg.StrictBiometricMethod,
	})
	reports := report.NewService(&report.StoreSource{
		Courses:  courses,
		Sessions: sessions,
		Students: students,
		Presence: presence,
	})

	var grpcServer *grpc.Server
	var health *healthhandler.Server
	healthDeps := server.Deps{HealthPinger: conn, HealthPolicyChecker: authz}
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		grpcServer = server.NewGRPCServer()
		health = server.RegisterServices(grpcServer, healthDeps)
		go func() {
			log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatalf("serve grpc: %v", err)
			}
		}()
	} else {
		health = healthhandler.NewServer(healthDeps.HealthPinger, healthDeps.HealthPolicyChecker)
	}

	app := httpapi.NewApp(httpapi.Config{
		CSRFCookieSecure: cfg.CSRFCookieSecure,
		MaxImageBytes:    cfg.FaceMaxImageBytes,
		RequestTimeout:   cfg.RequestTimeout(),
		FaceRateLimit:    cfg.FaceRateLimit,
	}, httpapi.Services{
		Sessions:   manager,
		Reports:    reports,
		Authorizer: authz,
		Tokens:     tokens,
		Audit:      auditLogger,
		Health:     health,
	})
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("serve http: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	httpCtx, httpCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer httpCancel()
	if err := app.ShutdownWithContext(httpCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if supervisor != nil {
		supervisor.StopAll()
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	// let in-flight async emits finish before closing their sinks
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	otelCtx, otelCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer otelCancel()
	if err := providers.Shutdown(otelCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("stopped")
}
