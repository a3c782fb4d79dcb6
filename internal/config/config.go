package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single-user mode, every request acts as DefaultUserID
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type StorageProvider string

const (
	StorageLocal StorageProvider = "local"
	StorageMinIO StorageProvider = "minio"
	StorageGCS   StorageProvider = "gcs"
)

type (
	Config struct {
		App
		HTTP
		Global
		Database
		Auth
		Tasks
		Audit
		I18nexus
		Translation
		TranslationSync
		PDF
		Storage
		Cache
		Metrics
		CORS
	}

	App struct {
		Env      string // "production" switches logging and browser resolution
		LogLevel string
	}
	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		AdminUserIDs    []string

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	I18nexus struct {
		BaseURL             string
		APIKey              string
		PersonalAccessToken string
		Timeout             time.Duration
	}
	Translation struct {
		BaseLanguage      string  // Language the course content is authored in
		StringsPerSecond  float64 // Pace of per-string creation calls
		PullConcurrency   int     // Languages fetched in parallel
		EncryptionKeyPath string  // Key for encrypting stored credentials
	}
	TranslationSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	PDF struct {
		ChromePath    string
		PrintBaseURL  string // Frontend origin serving print views
		RenderTimeout time.Duration
		SettleDelay   time.Duration
	}
	Storage struct {
		Provider        StorageProvider
		LocalDir        string
		Bucket          string
		MinIOEndpoint   string
		MinIOAccessKey  string
		MinIOSecretKey  string
		MinIOUseSSL     bool
		GCSCredentials  string
		PresignLifetime time.Duration
	}
	Cache struct {
		RedisAddr     string // Empty disables the render cache
		RedisPassword string
		RedisDB       int
		TTL           time.Duration
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
	CORS struct {
		AllowedOrigins []string
	}
)

// IsProduction reports whether the service runs in production mode.
func (a App) IsProduction() bool {
	return strings.EqualFold(a.Env, "production") || strings.EqualFold(a.Env, "prod")
}

func NewConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_admin_user_ids", "")
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")
	v.SetDefault("audit_retention_days", 30)

	// Translation defaults
	v.SetDefault("i18nexus_base_url", DefaultI18nexusBaseURL)
	v.SetDefault("i18nexus_api_key", "")
	v.SetDefault("i18nexus_personal_access_token", "")
	v.SetDefault("i18nexus_timeout", "30s")
	v.SetDefault("translation_base_language", "de")
	v.SetDefault("translation_strings_per_second", 8)
	v.SetDefault("translation_pull_concurrency", 4)
	v.SetDefault("translation_encryption_key_path", DefaultEncryptionKeyPath)
	v.SetDefault("translation_sync_enabled", false)
	v.SetDefault("translation_sync_schedule", "0 */6 * * *")

	// PDF rendering defaults
	v.SetDefault("pdf_chrome_path", "")
	v.SetDefault("pdf_print_base_url", "http://localhost:3000")
	v.SetDefault("pdf_render_timeout", "60s")
	v.SetDefault("pdf_settle_delay", "500ms")

	// Blob storage defaults
	v.SetDefault("storage_provider", string(StorageLocal))
	v.SetDefault("storage_local_dir", "./blobs")
	v.SetDefault("storage_bucket", "studio")
	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("gcs_credentials_file", "")
	v.SetDefault("storage_presign_lifetime", "15m")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("render_cache_ttl", "168h")

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("cors_allowed_origins", "http://localhost:3000")

	return &Config{
		App: App{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			AdminUserIDs:     splitList(v.GetString("AUTH_ADMIN_USER_IDS")),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		I18nexus: I18nexus{
			BaseURL:             v.GetString("I18NEXUS_BASE_URL"),
			APIKey:              v.GetString("I18NEXUS_API_KEY"),
			PersonalAccessToken: v.GetString("I18NEXUS_PERSONAL_ACCESS_TOKEN"),
			Timeout:             v.GetDuration("I18NEXUS_TIMEOUT"),
		},
		Translation: Translation{
			BaseLanguage:      v.GetString("TRANSLATION_BASE_LANGUAGE"),
			StringsPerSecond:  v.GetFloat64("TRANSLATION_STRINGS_PER_SECOND"),
			PullConcurrency:   v.GetInt("TRANSLATION_PULL_CONCURRENCY"),
			EncryptionKeyPath: v.GetString("TRANSLATION_ENCRYPTION_KEY_PATH"),
		},
		TranslationSync: TranslationSync{
			Enabled:  v.GetBool("TRANSLATION_SYNC_ENABLED"),
			Schedule: v.GetString("TRANSLATION_SYNC_SCHEDULE"),
		},
		PDF: PDF{
			ChromePath:    v.GetString("PDF_CHROME_PATH"),
			PrintBaseURL:  v.GetString("PDF_PRINT_BASE_URL"),
			RenderTimeout: v.GetDuration("PDF_RENDER_TIMEOUT"),
			SettleDelay:   v.GetDuration("PDF_SETTLE_DELAY"),
		},
		Storage: Storage{
			Provider:        StorageProvider(v.GetString("STORAGE_PROVIDER")),
			LocalDir:        v.GetString("STORAGE_LOCAL_DIR"),
			Bucket:          v.GetString("STORAGE_BUCKET"),
			MinIOEndpoint:   v.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey:  v.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey:  v.GetString("MINIO_SECRET_KEY"),
			MinIOUseSSL:     v.GetBool("MINIO_USE_SSL"),
			GCSCredentials:  v.GetString("GCS_CREDENTIALS_FILE"),
			PresignLifetime: v.GetDuration("STORAGE_PRESIGN_LIFETIME"),
		},
		Cache: Cache{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTL:           v.GetDuration("RENDER_CACHE_TTL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
