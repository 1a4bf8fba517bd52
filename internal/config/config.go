package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	// PublicBaseURL prefixes download links handed out to customers.
	PublicBaseURL string

	// AdminSecret gates administrative routes. Required.
	AdminSecret string
	// AuthSecret signs customer bearer tokens. Empty enables open mode:
	// every request is treated as pre-authorized and the identity is taken
	// from the submitted email. Run open mode only for demos.
	AuthSecret string

	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string

	PaywayAddress string
	PaywayAPIKey  string
	UnipayAddress string
	UnipayAPIKey  string

	// PriceAmount is the flat tuning price in minor currency units.
	PriceAmount   int64
	PriceCurrency string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	AdminEmail   string

	VerifyInterval  time.Duration
	VerifyBatch     int
	WorkerPoolSize  int
	NotifyQueueSize int
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultUploadDir       = "./uploads"
	defaultMaxUploadBytes  = 32 << 20
	defaultExtensions      = ".bin,.hex,.frf,.ori,.mod"
	defaultSMTPPort        = 587
	defaultPriceAmount     = 9900
	defaultPriceCurrency   = "EUR"
	defaultVerifyInterval  = 30 * time.Second
	defaultVerifyBatch     = 16
	defaultWorkerPoolSize  = 4
	defaultNotifyQueueSize = 64
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		PublicBaseURL:     getString(lookup, "PUBLIC_BASE_URL", ""),
		AdminSecret:       getString(lookup, "ADMIN_SECRET", ""),
		AuthSecret:        getString(lookup, "AUTH_SECRET", ""),
		UploadDir:         getString(lookup, "UPLOAD_DIR", defaultUploadDir),
		MaxUploadBytes:    getInt64(lookup, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AllowedExtensions: splitList(getString(lookup, "ALLOWED_EXTENSIONS", defaultExtensions)),
		PaywayAddress:     getString(lookup, "PAYWAY_ADDRESS", ""),
		PaywayAPIKey:      getString(lookup, "PAYWAY_API_KEY", ""),
		UnipayAddress:     getString(lookup, "UNIPAY_ADDRESS", ""),
		UnipayAPIKey:      getString(lookup, "UNIPAY_API_KEY", ""),
		PriceAmount:       getInt64(lookup, "PRICE_AMOUNT", defaultPriceAmount),
		PriceCurrency:     getString(lookup, "PRICE_CURRENCY", defaultPriceCurrency),
		SMTPHost:          getString(lookup, "SMTP_HOST", ""),
		SMTPPort:          getInt(lookup, "SMTP_PORT", defaultSMTPPort),
		SMTPUser:          getString(lookup, "SMTP_USER", ""),
		SMTPPassword:      getString(lookup, "SMTP_PASSWORD", ""),
		MailFrom:          getString(lookup, "MAIL_FROM", ""),
		AdminEmail:        getString(lookup, "ADMIN_EMAIL", ""),
		VerifyInterval:    getDuration(lookup, "VERIFY_INTERVAL", defaultVerifyInterval),
		VerifyBatch:       getInt(lookup, "VERIFY_BATCH", defaultVerifyBatch),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		NotifyQueueSize:   getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("ecutune", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		verifyIntervalStr  = cfg.VerifyInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", cfg.PublicBaseURL, "Public base URL for download links")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Directory for stored artifacts")
	fs.StringVar(&cfg.AdminSecret, "admin-secret", cfg.AdminSecret, "Shared secret for administrative routes")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent background workers")
	fs.IntVar(&cfg.VerifyBatch, "verify-batch", cfg.VerifyBatch, "Maximum orders per payment verification batch")
	fs.StringVar(&verifyIntervalStr, "verify-interval", verifyIntervalStr, "Interval between payment verification polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.VerifyInterval, err = time.ParseDuration(verifyIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid verify interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("ADMIN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read admin secret file: %w", err)
		}
		cfg.AdminSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.VerifyBatch <= 0 {
		cfg.VerifyBatch = defaultVerifyBatch
	}

	if cfg.VerifyInterval <= 0 {
		cfg.VerifyInterval = defaultVerifyInterval
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	if cfg.PriceAmount <= 0 {
		cfg.PriceAmount = defaultPriceAmount
	}

	if cfg.PriceCurrency == "" {
		cfg.PriceCurrency = defaultPriceCurrency
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.AdminSecret == "" {
		return nil, fmt.Errorf("admin secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		result = append(result, p)
	}
	return result
}
