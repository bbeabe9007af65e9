package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mailramp/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// WarmupConfig controls the ramp curve and the cycle runner cadence.
type WarmupConfig struct {
	DailyIncrease     int     `json:"daily_increase"`
	MaxDailyEmails    int     `json:"max_daily_emails"`
	WarmupDays        int     `json:"warmup_days"`
	MinTickMinutes    int     `json:"min_tick_minutes"`
	MaxTickMinutes    int     `json:"max_tick_minutes"`
	OpenProbability   float64 `json:"open_probability"`
	ReplyProbability  float64 `json:"reply_probability"`
	MinEngageDelaySec int     `json:"min_engage_delay_sec"`
	MaxEngageDelaySec int     `json:"max_engage_delay_sec"`
}

type Config struct {
	Environment    string       `json:"environment"`
	ServerPort     string       `json:"server_port"`
	BaseURL        string       `json:"base_url"`
	EncryptionKey  string       `json:"-"`
	JWTSecret      string       `json:"-"`
	SentryDSN      string       `json:"-"`
	DBHost         string       `json:"db_host"`
	DBPort         string       `json:"db_port"`
	DBUser         string       `json:"db_user"`
	DBPassword     string       `json:"-"`
	DBName         string       `json:"db_name"`
	DBSSLMode      string       `json:"db_ssl_mode"`
	DBMaxIdleConns int          `json:"db_max_idle_conns"`
	DBMaxOpenConns int          `json:"db_max_open_conns"`
	RateLimitTest  int          `json:"rate_limit_test"`
	Redis          RedisConfig  `json:"redis"`
	Warmup         WarmupConfig `json:"warmup"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:5000"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "mailramp"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		RateLimitTest:  getEnvAsInt("RATE_LIMIT_TEST_SENDER", 5),

		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		Warmup: WarmupConfig{
			DailyIncrease:     getEnvAsInt("WARMUP_DAILY_INCREASE", 5),
			MaxDailyEmails:    getEnvAsInt("WARMUP_MAX_DAILY_EMAILS", 100),
			WarmupDays:        getEnvAsInt("WARMUP_DAYS", 30),
			MinTickMinutes:    getEnvAsInt("WARMUP_MIN_TICK_MINUTES", 5),
			MaxTickMinutes:    getEnvAsInt("WARMUP_MAX_TICK_MINUTES", 15),
			OpenProbability:   getEnvAsFloat("WARMUP_OPEN_PROBABILITY", 0.92),
			ReplyProbability:  getEnvAsFloat("WARMUP_REPLY_PROBABILITY", 0.75),
			MinEngageDelaySec: getEnvAsInt("WARMUP_MIN_ENGAGE_DELAY_SEC", 180),
			MaxEngageDelaySec: getEnvAsInt("WARMUP_MAX_ENGAGE_DELAY_SEC", 300),
		},
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.Warmup.DailyIncrease <= 0 || AppConfig.Warmup.MaxDailyEmails <= 0 {
		return fmt.Errorf("warmup curve values must be positive")
	}
	if AppConfig.Warmup.MinTickMinutes > AppConfig.Warmup.MaxTickMinutes {
		return fmt.Errorf("WARMUP_MIN_TICK_MINUTES cannot exceed WARMUP_MAX_TICK_MINUTES")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value float64
	_, err := fmt.Sscanf(valueStr, "%g", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Warmup curve: +%d/day up to %d over %d days",
		AppConfig.Warmup.DailyIncrease,
		AppConfig.Warmup.MaxDailyEmails,
		AppConfig.Warmup.WarmupDays)
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Sender{},
		&models.WarmupDay{},
		&models.WarmupStat{},
		&models.WarmupEmail{},
		&models.Campaign{},
		&models.CampaignRecipient{},
	)
}
