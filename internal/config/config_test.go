package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("AUTH0_DOMAIN", "farm.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.farmbook")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, 2.0, cfg.VoiceRateLimit)
	assert.Equal(t, 10, cfg.VoiceBurst)
	assert.Equal(t, 15*time.Minute, cfg.ArchiveURLTTL)
	assert.Empty(t, cfg.ArchiveDriver)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/f.db")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("VOICE_RATE_LIMIT", "0.5")
	t.Setenv("VOICE_BURST", "3")
	t.Setenv("ARCHIVE_DRIVER", "s3")
	t.Setenv("ARCHIVE_URL_TTL", "1h")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 0.5, cfg.VoiceRateLimit)
	assert.Equal(t, 3, cfg.VoiceBurst)
	assert.Equal(t, time.Hour, cfg.ArchiveURLTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"missing auth0 domain", map[string]string{"STORE_DRIVER": "memory", "AUTH0_DOMAIN": ""}},
		{"bad archive driver", map[string]string{"STORE_DRIVER": "memory", "ARCHIVE_DRIVER": "ftp"}},
		{"zero burst", map[string]string{"STORE_DRIVER": "memory", "VOICE_BURST": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
