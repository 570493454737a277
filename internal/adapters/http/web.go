package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"carelog/internal/adapters/email"
	"carelog/internal/adapters/http/middleware"
	"carelog/internal/adapters/http/perf"
	entryStore "carelog/internal/adapters/storage/entry"
)

// Stores holds all storage dependencies.
type Stores struct {
	EntryStore entryStore.Store
}

// loadCSRFKey reads the CSRF secret from CARELOG_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CARELOG_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CARELOG_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CARELOG_ENV") == "production" {
		log.Fatal("CARELOG_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CARELOG_CSRF_KEY for production.")
	return key
}

// trustedOrigins returns extra origins allowed by CSRF checks,
// from CARELOG_TRUSTED_ORIGINS (comma-separated host[:port] values).
func trustedOrigins() []string {
	raw := os.Getenv("CARELOG_TRUSTED_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Shared admin credential as a bcrypt hash (set by SetAdminPasswordHash)
var adminPasswordHash []byte

// SetAdminPasswordHash sets the bcrypt hash the login view checks against.
func SetAdminPasswordHash(hash []byte) {
	adminPasswordHash = hash
}

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var digestRecipient string

// SetEmailSender sets the global email sender and digest recipient.
func SetEmailSender(sender email.Sender, from, digestTo string) {
	emailSender = sender
	emailFromAddress = from
	digestRecipient = digestTo
}

// registerRoutes attaches all application routes to the mux. Admin, snapshot,
// entries API, export, digest, and delete are session-gated; everything else
// is open.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("POST /submit", handleSubmit)
	mux.HandleFunc("GET /breakdown", handleBreakdown)
	mux.HandleFunc("GET /login", handleLogin)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("GET /logout", handleLogout)

	mux.Handle("GET /admin", middleware.RequireAuth(http.HandlerFunc(handleAdmin)))
	mux.Handle("GET /snapshot", middleware.RequireAuth(http.HandlerFunc(handleSnapshot)))
	mux.Handle("GET /api/entries", middleware.RequireAuth(http.HandlerFunc(handleAPIEntries)))
	mux.Handle("GET /admin/export", middleware.RequireAuth(http.HandlerFunc(handleExport)))
	mux.Handle("POST /admin/digest", middleware.RequireAuth(http.HandlerFunc(handleSendDigest)))
	mux.Handle("POST /delete/{id}", middleware.RequireAuth(http.HandlerFunc(handleDeleteEntry)))
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("CARELOG_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, trustedOrigins()),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
