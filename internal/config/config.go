package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string
	AppURL   string // public base URL used in emailed links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	PresignTTL     time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPMaxConns int

	SNSRegion           string
	SNSVerifiedTopicARN string

	RedisAddr     string // empty disables the shared limiter
	RedisPassword string

	OTP OTP

	EmailLinkExpiration time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// OTP holds the one-time code settings.
type OTP struct {
	Length      int
	Expiration  time.Duration
	MaxAttempts int
	Channel     string // "email" | "sms"
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	Devices       string
	Profiles      string
	Posts         string
	Comments      string
	Likes         string
	Tags          string
	Categories    string
	Files         string
	Notifications string
	Verifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AppURL:   getEnv("APP_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Profiles:      getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			Posts:         getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Comments:      getEnv("DYNAMO_TABLE_COMMENTS", "comments"),
			Likes:         getEnv("DYNAMO_TABLE_LIKES", "likes"),
			Tags:          getEnv("DYNAMO_TABLE_TAGS", "tags"),
			Categories:    getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
			Files:         getEnv("DYNAMO_TABLE_FILES", "files"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", "user_verifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "socialhub-media"),
		PresignTTL:   time.Duration(getEnvInt("PRESIGN_TTL_MINUTES", 60)) * time.Minute,

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@socialhub.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPMaxConns: getEnvInt("SMTP_MAX_CONNS", 4),

		SNSRegion:           getEnv("SNS_REGION", "us-east-1"),
		SNSVerifiedTopicARN: getEnv("SNS_VERIFIED_TOPIC_ARN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OTP: OTP{
			Length:      getEnvInt("OTP_LENGTH", 6),
			Expiration:  time.Duration(getEnvInt("OTP_EXPIRATION", 10)) * time.Minute,
			MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
			Channel:     getEnv("OTP_CHANNEL", "email"),
		},
		EmailLinkExpiration: time.Duration(getEnvInt("EMAIL_LINK_EXPIRATION", 60)) * time.Minute,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
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
