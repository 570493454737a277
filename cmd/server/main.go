package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "carelog/internal/adapters/email"
	web "carelog/internal/adapters/http"
	"carelog/internal/adapters/http/perf"
	"carelog/internal/adapters/storage"
	entryStore "carelog/internal/adapters/storage/entry"
	"carelog/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode and busy timeout
	dbPath := envOrDefault("CARELOG_DB", "carelog.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Auto-create the entries table on first run
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		EntryStore: entryStore.NewSQLiteStore(timedDB),
	}

	// Shared admin credential. Prefer a precomputed bcrypt hash; fall back to
	// hashing a plaintext password at startup.
	web.SetAdminPasswordHash(loadAdminCredential())

	// Configure email sender for the overdue digest
	resendKey := os.Getenv("CARELOG_RESEND_KEY")
	emailFrom := envOrDefault("CARELOG_RESEND_FROM", "Care Log <noreply@example.org>")
	digestTo := os.Getenv("CARELOG_DIGEST_TO")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, digestTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, digestTo)
		if os.Getenv("CARELOG_ENV") == "production" {
			log.Println("WARNING: CARELOG_RESEND_KEY is not set — digest email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set CARELOG_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("CARELOG_ADDR", ":8080")
	log.Printf("Care Log %s starting on %s (env=%s, db=%s)", version, addr, envOrDefault("CARELOG_ENV", "development"), dbPath)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadAdminCredential resolves the shared admin password to a bcrypt hash.
// CARELOG_ADMIN_PASSWORD_HASH wins; otherwise CARELOG_ADMIN_PASSWORD is
// hashed at startup. Production refuses to run without one of the two.
func loadAdminCredential() []byte {
	if hash := os.Getenv("CARELOG_ADMIN_PASSWORD_HASH"); hash != "" {
		return []byte(hash)
	}
	plaintext := os.Getenv("CARELOG_ADMIN_PASSWORD")
	if plaintext == "" {
		if os.Getenv("CARELOG_ENV") == "production" {
			log.Fatal("CARELOG_ADMIN_PASSWORD_HASH or CARELOG_ADMIN_PASSWORD is required in production")
		}
		plaintext = "changeme"
		log.Println("WARNING: using default admin password. Set CARELOG_ADMIN_PASSWORD for anything beyond local development.")
	}
	hash, err := orchestrators.HashPassword(plaintext)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}
	return hash
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
