package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "0.0.0.0:50051", cfg.GRPCAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, CacheDriverMemory, cfg.CacheDriver)
	assert.Equal(t, "Asia/Tokyo", cfg.TimeZone)
	assert.Equal(t, "10:00", cfg.Window.Open.String())
	assert.Equal(t, "17:00", cfg.Window.Close.String())
	assert.Equal(t, "16:30", cfg.Window.LastSlotStart.String())
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration)
	assert.Equal(t, "JS", cfg.CandidatePrefix)
	assert.Equal(t, "AP", cfg.AppointmentPrefix)
	assert.Equal(t, 7, cfg.IDWidth)
	assert.True(t, cfg.SingleWriter)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoad_LegacyEnvironmentNames(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("INTERVIEWDESK_STORE_DRIVER", "kintone")
	t.Setenv("KINTONE_DOMAIN", "example.cybozu.com")
	t.Setenv("KINTONE_APP_ID", "12")
	t.Setenv("KINTONE_API_TOKEN", "secret")
	t.Setenv("INTERVIEWDESK_KINTONE_APPOINTMENTS_APP", "13")
	t.Setenv("GOOGLE_CALENDAR_ID", "team@example.com")
	t.Setenv("GOOGLE_CALENDAR_CREDENTIALS", `{"type":"service_account"}`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreDriverKintone, cfg.StoreDriver)
	assert.Equal(t, "example.cybozu.com", cfg.KintoneDomain)
	assert.Equal(t, "12", cfg.KintoneCandidatesApp)
	assert.Equal(t, "secret", cfg.KintoneCandidatesToken)
	assert.Equal(t, "13", cfg.KintoneAppointmentsApp)
	assert.Equal(t, "team@example.com", cfg.CalendarID)
	assert.Equal(t, `{"type":"service_account"}`, cfg.GoogleCredentialsJSON)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INTERVIEWDESK_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("INTERVIEWDESK_BUSINESS_OPEN", "09:00")
	t.Setenv("INTERVIEWDESK_BUSINESS_CLOSE", "18:00")
	t.Setenv("INTERVIEWDESK_BUSINESS_LAST_SLOT_START", "17:00")
	t.Setenv("INTERVIEWDESK_BUSINESS_SLOT_DURATION", "1h")
	t.Setenv("INTERVIEWDESK_CACHE_DRIVER", "redis")
	t.Setenv("INTERVIEWDESK_IDS_SINGLE_WRITER", "false")
	t.Setenv("INTERVIEWDESK_HTTP_CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "09:00", cfg.Window.Open.String())
	assert.Equal(t, time.Hour, cfg.SlotDuration)
	assert.Equal(t, CacheDriverRedis, cfg.CacheDriver)
	assert.False(t, cfg.SingleWriter)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":          {"INTERVIEWDESK_SHUTDOWN_TIMEOUT": "soon"},
		"bad time of day":       {"INTERVIEWDESK_BUSINESS_OPEN": "9am"},
		"last start past close": {"INTERVIEWDESK_BUSINESS_LAST_SLOT_START": "17:00"},
		"unknown zone":          {"INTERVIEWDESK_BUSINESS_TIME_ZONE": "Mars/Olympus"},
		"unknown store":         {"INTERVIEWDESK_STORE_DRIVER": "sheets"},
		"unknown cache":         {"INTERVIEWDESK_CACHE_DRIVER": "disk"},
		"kintone without apps":  {"INTERVIEWDESK_STORE_DRIVER": "kintone", "KINTONE_DOMAIN": "example.cybozu.com"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
