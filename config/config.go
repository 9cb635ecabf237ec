package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables
// and an optional .env file.
type AppConfig struct {
	// Control-plane database (stores users, projects, db records, memberships)
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Managed MariaDB server. AdminUser/AdminPass is the privileged control
	// credential used only for provisioning, grant reconciliation and dumps;
	// it is never handed to tenants.
	TenantHost      string
	TenantPort      int
	TenantAdminUser string
	TenantAdminPass string

	// Object storage for backups
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Auth
	JWTSecret string
	JWTExpiry time.Duration

	// Backup config
	MysqldumpPath     string
	BackupTempDir     string
	BackupTimeout     time.Duration
	TenantConnTimeout time.Duration

	// Audit log queue size; writes beyond a full queue are dropped with a
	// warning rather than blocking the caller.
	AuditQueueSize int

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads application configuration from .env file and environment
// variables.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "mariadb_paas")

	Cfg.TenantHost = getEnv("TENANT_DB_HOST", "127.0.0.1")
	Cfg.TenantPort = getEnvInt("TENANT_DB_PORT", 3307)
	Cfg.TenantAdminUser = getEnv("TENANT_DB_ADMIN_USER", "root")
	Cfg.TenantAdminPass = getEnv("TENANT_DB_ADMIN_PASS", "")

	Cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	Cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	Cfg.S3Bucket = getEnv("S3_BUCKET", "mariadb-backups")
	Cfg.S3AccessKey = getEnv("S3_ACCESS_KEY", "")
	Cfg.S3SecretKey = getEnv("S3_SECRET_KEY", "")

	Cfg.JWTSecret = getEnv("JWT_SECRET", "")
	Cfg.JWTExpiry = time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 24*60)) * time.Minute

	Cfg.MysqldumpPath = getEnv("MYSQLDUMP_PATH", "mysqldump")
	Cfg.BackupTempDir = getEnv("BACKUP_TEMP_DIR", "/tmp/mariadbpaas/backups")
	Cfg.BackupTimeout = time.Duration(getEnvInt("BACKUP_TIMEOUT_SECONDS", 600)) * time.Second
	Cfg.TenantConnTimeout = time.Duration(getEnvInt("TENANT_CONN_TIMEOUT_SECONDS", 10)) * time.Second

	Cfg.AuditQueueSize = getEnvInt("AUDIT_QUEUE_SIZE", 256)

	Cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/mariadbpaas/api.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	log.Printf("[INFO] Config loaded - control plane: %s@%s:%d/%s, tenant server: %s:%d, bucket: %s",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName, Cfg.TenantHost, Cfg.TenantPort, Cfg.S3Bucket)

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
