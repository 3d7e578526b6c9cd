package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Pix      PixConfig
	Midtrans MidtransConfig
	Access   AccessConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// PixConfig identifies the receiving merchant in every generated payload.
type PixConfig struct {
	MerchantName         string
	MerchantCity         string
	PaymentKey           string
	MerchantCategoryCode string
	QRRendererURL        string
	QRSize               int
}

type MidtransConfig struct {
	ServerKey      string
	IsProduction   bool
	FinishRedirect string
}

type AccessConfig struct {
	PurgeInterval  time.Duration
	StatusCacheTTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ViralizaAI"),
		},
		Pix: PixConfig{
			MerchantName:         getEnv("PIX_MERCHANT_NAME", "ViralizaAI"),
			MerchantCity:         getEnv("PIX_MERCHANT_CITY", "Sao Paulo"),
			PaymentKey:           getEnv("PIX_KEY", ""),
			MerchantCategoryCode: getEnv("PIX_MCC", "0000"),
			QRRendererURL:        getEnv("QR_RENDERER_URL", "https://api.qrserver.com/v1/create-qr-code/"),
			QRSize:               getEnvAsInt("QR_SIZE", 300),
		},
		Midtrans: MidtransConfig{
			ServerKey:      getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction:   getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			FinishRedirect: getEnv("MIDTRANS_FINISH_URL", "http://localhost:5173/payment/finish"),
		},
		Access: AccessConfig{
			PurgeInterval:  getEnvAsDuration("ACCESS_PURGE_INTERVAL", time.Hour),
			StatusCacheTTL: getEnvAsDuration("PAYMENT_STATUS_CACHE_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings such as "30m" or "1h"; zero disables.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
