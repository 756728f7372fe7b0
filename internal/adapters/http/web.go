package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"fitcoach/internal/adapters/email"
	"fitcoach/internal/adapters/http/middleware"
	"fitcoach/internal/adapters/http/perf"
	accountStore "fitcoach/internal/adapters/storage/account"
	auditStore "fitcoach/internal/adapters/storage/audit"
	measurementStore "fitcoach/internal/adapters/storage/measurement"
	planStore "fitcoach/internal/adapters/storage/plan"
	progressStore "fitcoach/internal/adapters/storage/progress"
	accountDomain "fitcoach/internal/domain/account"
	planDomain "fitcoach/internal/domain/plan"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	Accounts     accountStore.Store
	Diets        planStore.Store
	Trainings    planStore.Store
	Measurements measurementStore.Store
	Progress     progressStore.Store
	Audit        auditStore.Store
}

// Config carries the HTTP settings resolved at startup.
type Config struct {
	CSRFKey        []byte
	SessionKey     []byte
	SessionTTL     time.Duration
	Secure         bool
	TrustedOrigins []string
	SlowRequest    time.Duration
}

// LoadCSRFKey reads the CSRF secret from FITCOACH_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func LoadCSRFKey() []byte {
	return loadKey("FITCOACH_CSRF_KEY", "CSRF tokens")
}

// LoadSessionKey reads the session signing key from FITCOACH_SESSION_KEY
// (hex-encoded, 32 bytes) with the same production rule as LoadCSRFKey.
func LoadSessionKey() []byte {
	return loadKey("FITCOACH_SESSION_KEY", "sessions")
}

func loadKey(envVar, what string) []byte {
	if keyHex := os.Getenv(envVar); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatalf("%s must be 64 hex characters (32 bytes)", envVar)
		}
		return key
	}
	if os.Getenv("FITCOACH_ENV") == "production" {
		log.Fatalf("%s is required in production", envVar)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate key for %s: %v", envVar, err)
	}
	log.Printf("WARNING: using random key for %s (%s won't survive restart). Set %s for production.", what, what, envVar)
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session manager (set by NewMux)
var sessions *middleware.SessionManager

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender (set by SetEmailSender). Nil disables notifications.
var emailSender email.Sender

// loginURL is linked from notification emails.
var loginURL string

// SetEmailSender sets the sender used for activation notices.
func SetEmailSender(sender email.Sender, baseURL string) {
	emailSender = sender
	loginURL = ""
	if baseURL != "" {
		loginURL = baseURL + "/login"
	}
}

// NewMux wires HTTP handlers and the middleware chain for the app.
func NewMux(s *Stores, collector *perf.Collector, cfg Config) http.Handler {
	middleware.SecureCookies = cfg.Secure
	app := newApp(s, collector, cfg)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Request flow: Timing -> RateLimit -> SecurityHeaders -> CSRF -> app (Gate -> mux)
	return middleware.Chain(app,
		middleware.CSRF(cfg.CSRFKey, cfg.Secure, cfg.TrustedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(collector, cfg.SlowRequest),
	)
}

// newApp sets the package globals and returns the routed mux behind the
// identity gate. Tests drive it directly, without CSRF or rate limiting.
func newApp(s *Stores, collector *perf.Collector, cfg Config) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionManager(cfg.SessionKey, cfg.SessionTTL)

	mux := http.NewServeMux()
	registerRoutes(mux)
	return middleware.Gate(sessions, s.Accounts)(mux)
}

func registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.FileServerFS(staticFS))

	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /register", handleRegisterPage)
	mux.HandleFunc("POST /register", handleRegister)
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)

	mux.HandleFunc("GET /cliente/panel", guard(accountDomain.RoleCliente, handleClientePanel))
	mux.HandleFunc("POST /cliente/pagar", guard(accountDomain.RoleCliente, handleClientePagar))
	mux.HandleFunc("POST /cliente/medidas", guard(accountDomain.RoleCliente, handleClienteMedidas))

	mux.HandleFunc("GET /admin/panel", guard(accountDomain.RoleAdmin, handleAdminPanel))
	mux.HandleFunc("POST /admin/clientes/crear", guard(accountDomain.RoleAdmin, handleAdminCreateClient))
	mux.HandleFunc("GET /admin/clientes/{id}", guard(accountDomain.RoleAdmin, handleAdminClientDetail))
	mux.HandleFunc("POST /admin/clientes/{id}/actualizar", guard(accountDomain.RoleAdmin, handleAdminUpdateClient))
	mux.HandleFunc("POST /admin/clientes/{id}/activar", guard(accountDomain.RoleAdmin, handleAdminActivate))
	mux.HandleFunc("POST /admin/clientes/{id}/eliminar", guard(accountDomain.RoleAdmin, handleAdminDeleteClient))
	mux.HandleFunc("POST /admin/clientes/{id}/dieta", guard(accountDomain.RoleAdmin, handleAdminSavePlan(planDomain.KindDiet)))
	mux.HandleFunc("POST /admin/clientes/{id}/entrenamiento", guard(accountDomain.RoleAdmin, handleAdminSavePlan(planDomain.KindTraining)))
	mux.HandleFunc("POST /admin/clientes/{id}/medidas", guard(accountDomain.RoleAdmin, handleAdminSubmission))
	mux.HandleFunc("POST /admin/clientes/{id}/progreso", guard(accountDomain.RoleAdmin, handleAdminProgressNote))
	mux.HandleFunc("GET /admin/auditoria", guard(accountDomain.RoleAdmin, handleAdminAuditTrail))
	mux.HandleFunc("GET /admin/rendimiento", guard(accountDomain.RoleAdmin, handleAdminPerformance))
}

