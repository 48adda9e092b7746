package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at process start and passed by reference into each
// component's constructor; nothing reads ambient environment mid-request.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSigningSecret   string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	OTPTTL time.Duration

	SMSProvider     string // "aakash" | "sns"
	AakashAuthToken string
	AakashSendURL   string
	SMSTimeout      time.Duration
	SNSRegion       string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	OTPs  string
	Users string
}

// Load reads all configuration from environment variables.
// It exits the process when a required credential is absent.
func Load() *Config {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			OTPs:  getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Users: getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		JWTSigningSecret:   getEnv("JWT_SIGNING_SECRET", ""),
		JWTRefreshSecret:   getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenExpiry:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRY_DAYS", 180)) * 24 * time.Hour,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 365)) * 24 * time.Hour,

		OTPTTL: time.Duration(getEnvInt("OTP_TTL_SECONDS", 300)) * time.Second,

		SMSProvider:     getEnv("SMS_PROVIDER", "aakash"),
		AakashAuthToken: getEnv("AAKASH_AUTH_TOKEN", ""),
		AakashSendURL:   getEnv("AAKASH_SEND_URL", "https://sms.aakashsms.com/smsIv3/send"),
		SMSTimeout:      time.Duration(getEnvInt("SMS_TIMEOUT_SECONDS", 10)) * time.Second,
		SNSRegion:       getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}

	var missing []string
	if cfg.JWTSigningSecret == "" {
		missing = append(missing, "JWT_SIGNING_SECRET")
	}
	if cfg.JWTRefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}
	if cfg.SMSProvider == "aakash" && cfg.AakashAuthToken == "" {
		missing = append(missing, "AAKASH_AUTH_TOKEN")
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
