package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	emailPkg "fitcoach/internal/adapters/email"
	web "fitcoach/internal/adapters/http"
	"fitcoach/internal/adapters/http/middleware"
	"fitcoach/internal/adapters/http/perf"
	"fitcoach/internal/adapters/storage"
	accountStore "fitcoach/internal/adapters/storage/account"
	auditStore "fitcoach/internal/adapters/storage/audit"
	measurementStore "fitcoach/internal/adapters/storage/measurement"
	planStore "fitcoach/internal/adapters/storage/plan"
	progressStore "fitcoach/internal/adapters/storage/progress"
	"fitcoach/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is fine; real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to read .env: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("FITCOACH_LOG_LEVEL")),
	})))

	env := envOrDefault("FITCOACH_ENV", "development")
	production := env == "production"

	dbPath := envOrDefault("FITCOACH_DB", "fitcoach.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, envMillis("FITCOACH_SLOW_QUERY_MS", storage.DefaultSlowQuery))

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		Accounts:     acctStore,
		Diets:        planStore.NewDietSQLiteStore(timedDB),
		Trainings:    planStore.NewTrainingSQLiteStore(timedDB),
		Measurements: measurementStore.NewSQLiteStore(timedDB),
		Progress:     progressStore.NewSQLiteStore(timedDB),
		Audit:        auditStore.NewSQLiteStore(timedDB),
	}

	// Bootstrap admin: only when none exists, and only from operator-supplied credentials
	seeded, err := orchestrators.ExecuteSeedAdmin(context.Background(), orchestrators.SeedAdminInput{
		Name:     envOrDefault("FITCOACH_ADMIN_NAME", "Administrador"),
		Email:    os.Getenv("FITCOACH_ADMIN_EMAIL"),
		Password: os.Getenv("FITCOACH_ADMIN_PASSWORD"),
	}, orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if seeded {
		log.Println("Bootstrap admin account created")
	}

	// Configure email sender
	baseURL := strings.TrimRight(os.Getenv("FITCOACH_BASE_URL"), "/")
	if resendKey := os.Getenv("FITCOACH_RESEND_KEY"); resendKey != "" {
		from := envOrDefault("FITCOACH_MAIL_FROM", "FitCoach <noreply@fitcoach.local>")
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, from), baseURL)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), baseURL)
		if production {
			log.Println("WARNING: FITCOACH_RESEND_KEY is not set, activation emails are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set FITCOACH_RESEND_KEY for real delivery)")
		}
	}

	sessionTTL := middleware.DefaultSessionTTL
	if v := os.Getenv("FITCOACH_SESSION_TTL"); v != "" {
		if sessionTTL, err = time.ParseDuration(v); err != nil || sessionTTL <= 0 {
			log.Fatalf("FITCOACH_SESSION_TTL must be a positive duration, got %q", v)
		}
	}

	var trustedOrigins []string
	for _, o := range strings.Split(os.Getenv("FITCOACH_TRUSTED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			trustedOrigins = append(trustedOrigins, o)
		}
	}

	mux := web.NewMux(stores, collector, web.Config{
		CSRFKey:        web.LoadCSRFKey(),
		SessionKey:     web.LoadSessionKey(),
		SessionTTL:     sessionTTL,
		Secure:         production,
		TrustedOrigins: trustedOrigins,
		SlowRequest:    envMillis("FITCOACH_SLOW_REQUEST_MS", middleware.DefaultSlowRequest),
	})

	addr := envOrDefault("FITCOACH_ADDR", ":8080")
	log.Printf("FitCoach %s starting on %s (env=%s, schema=%d)", version, addr, env, storage.LatestSchemaVersion())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envMillis reads a millisecond threshold, falling back on absent or invalid values.
func envMillis(key string, fallback time.Duration) time.Duration {
	if ms, err := strconv.Atoi(os.Getenv(key)); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
