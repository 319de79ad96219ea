package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_HOST", "SMTP_PORT", "KAFKA_BROKERS", "SESSION_SECURE", "EMAIL_FROM", "SMTP_USER"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "emails", cfg.KafkaEmailTopic)
	assert.False(t, cfg.SessionSecure)
	assert.Empty(t, cfg.KafkaBrokerList())
	assert.False(t, cfg.SMTPConfigured())
	assert.Equal(t, "", cfg.Sender())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("SMTP_USER", "mailer@risehub.site")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := FromEnv()
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.SessionSecure)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
	assert.Empty(t, cfg.CORSOriginList())
	assert.True(t, cfg.SMTPConfigured())
	assert.Equal(t, "mailer@risehub.site", cfg.Sender())
}

func TestDBConnString(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5433", DBUser: "rise", DBName: "hub", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=rise dbname=hub sslmode=disable", cfg.DBConnString())

	cfg.DBPassword = "pw"
	assert.Contains(t, cfg.DBConnString(), " password=pw")
}

func TestCORSOriginList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://risehub.site, https://admin.risehub.site,")
	assert.Equal(t, []string{"https://risehub.site", "https://admin.risehub.site"}, FromEnv().CORSOriginList())
}
