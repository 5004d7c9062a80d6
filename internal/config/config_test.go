package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SNAPSHOT_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DriverFile, cfg.SnapshotDriver)
	assert.Equal(t, time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, 256, cfg.AuditBuffer)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SNAPSHOT_DRIVER", DriverSQLite)
	t.Setenv("SNAPSHOT_INTERVAL", "15s")
	t.Setenv("AUDIT_MEMORY_SIZE", "50")
	t.Setenv("KAFKA_BROKER", "kafka:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.SnapshotDriver)
	assert.Equal(t, 15*time.Second, cfg.SnapshotInterval)
	assert.Equal(t, 50, cfg.AuditMemorySize)
	assert.Equal(t, "kafka:9092", cfg.KafkaBroker)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"unknown driver", map[string]string{"SNAPSHOT_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"SNAPSHOT_DRIVER": DriverPostgres, "DATABASE_URL": ""}},
		{"bad interval", map[string]string{"SNAPSHOT_INTERVAL": "soon"}},
		{"bad buffer", map[string]string{"AUDIT_BUFFER": "many"}},
		{"production without secret", map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
