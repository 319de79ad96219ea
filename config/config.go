package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	// Kafka (empty brokers disables the queue and mail is sent inline)
	KafkaBrokers     string
	KafkaEmailTopic  string
	KafkaEventsTopic string
	KafkaGroupID     string

	SessionKey    string
	SessionSecure bool

	// Comma-separated origins allowed to call the API with credentials
	CORSOrigins string

	LogLevel  string
	LogFormat string

	SiteName     string
	SupportEmail string
}

var AppConfig Config

func LoadConfig() {
	// Try loading .env from different locations
	envLocations := []string{
		".env",              // project root
		"config/.env",       // config subdirectory
		"../config/.env",    // one level up
		"../../config/.env", // two levels up
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() Config {
	return Config{
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvWithDefault("DB_NAME", "risehub"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		SMTPHost:  getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getIntWithDefault("SMTP_PORT", 587),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),

		// Kafka settings (comma-separated brokers)
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaEmailTopic:  getEnvWithDefault("KAFKA_EMAIL_TOPIC", "emails"),
		KafkaEventsTopic: getEnvWithDefault("KAFKA_EVENTS_TOPIC", "enrollment.events"),
		KafkaGroupID:     getEnvWithDefault("KAFKA_GROUP_ID", "risehub-mailer"),

		SessionKey:    os.Getenv("SESSION_KEY"),
		SessionSecure: getBoolWithDefault("SESSION_SECURE", false),

		CORSOrigins: os.Getenv("CORS_ORIGINS"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "console"),

		SiteName:     getEnvWithDefault("SITE_NAME", "Rise Hub"),
		SupportEmail: getEnvWithDefault("SUPPORT_EMAIL", "info@risehub.site"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// KafkaBrokerList splits KafkaBrokers, dropping blanks.
func (c Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

func (c Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SMTPConfigured reports whether credentials for outbound mail are present.
func (c Config) SMTPConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

// Sender returns the From address, falling back to the SMTP user.
func (c Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.SMTPUser
}

// DBConnString renders the lib/pq keyword connection string.
func (c Config) DBConnString() string {
	conn := "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
	if c.DBPassword != "" {
		conn += " password=" + c.DBPassword
	}
	return conn
}
