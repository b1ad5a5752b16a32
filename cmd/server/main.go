package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"keai-wms/backend/internal/account"
	accountrepo "keai-wms/backend/internal/account/repository"
	"keai-wms/backend/internal/audit"
	auditdomain "keai-wms/backend/internal/audit/domain"
	auditrepo "keai-wms/backend/internal/audit/repository"
	"keai-wms/backend/internal/authn"
	"keai-wms/backend/internal/config"
	"keai-wms/backend/internal/db"
	"keai-wms/backend/internal/devotp"
	"keai-wms/backend/internal/lockout"
	"keai-wms/backend/internal/mail"
	"keai-wms/backend/internal/metrics"
	"keai-wms/backend/internal/middleware"
	"keai-wms/backend/internal/otp"
	otprepo "keai-wms/backend/internal/otp/repository"
	"keai-wms/backend/internal/security"
	"keai-wms/backend/internal/server"
	"keai-wms/backend/internal/session"
	"keai-wms/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.SessionTokenSecret == "" {
		log.Fatal("SESSION_TOKEN_SECRET is not set")
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "keai-wms", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	accounts := accountrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(
		auditrepo.NewPostgresRepository(conn),
		otel.NewEventEmitter(providers.LoggerProvider),
	)

	hasher := security.NewHasher(cfg.BcryptCost)

	var sender mail.Sender
	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		log.Println("dev OTP mode: codes are served on GET /dev/otp, no mail is sent")
		sender = mail.DevSender{}
		devStore = devotp.NewMemoryStore()
	} else {
		sender = mail.NewRelayClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailSender)
	}
	otpSvc := otp.NewService(otprepo.NewPostgresRepository(conn), hasher, sender, devStore, cfg.ChallengeTTL())

	sessions := session.NewRegistry(cfg.IdleTimeout(), cfg.PollInterval(), func(sessionID, accountID string) {
		collector.RecordSessionTimeout()
		auditLogger.LogEvent(context.Background(), accountID, auditdomain.KindSessionTimeout, "")
	})
	tokens := security.NewTokenProvider(
		[]byte(cfg.SessionTokenSecret),
		cfg.SessionTokenIssuer,
		cfg.SessionTokenAudience,
		cfg.TokenTTL(),
	)

	tracker := lockout.NewTracker(cfg.LockoutThreshold, cfg.LockWindow())
	authSvc := authn.NewService(accounts, tracker, otpSvc, sessions, tokens, auditLogger, collector)
	accountSvc := account.NewService(accounts, hasher, auditLogger)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            rate.Limit(cfg.LoginRate),
		Burst:           cfg.LoginBurst,
		CleanupInterval: 5 * time.Minute,
	})
	defer rl.Stop()

	router := server.NewRouter(&server.RouterDeps{
		AuthService:    authSvc,
		AccountService: accountSvc,
		AccountRepo:    accounts,
		Tokens:         tokens,
		Sessions:       sessions,
		RateLimiter:    rl,
		Gatherer:       reg,
		DevOTPStore:    devStore,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
