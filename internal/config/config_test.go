package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, "super-secret-key", cfg.Session.Secret)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, false, cfg.Session.Secure)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "webauth", cfg.MongoDB.Database)
	assert.Equal(t, "./data", cfg.FS.StoragePath)
	assert.Equal(t, "http://localhost:5000/api/auth/google/callback", cfg.Google.CallbackURL)
	assert.Equal(t, "/login", cfg.OAuthFailureURL)
	assert.False(t, cfg.GoogleEnabled())
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "server override",
			envVars: map[string]string{
				"PORT":         "8080",
				"LOG_LEVEL":    "-4",
				"FRONTEND_URL": "https://app.example.com",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "8080", cfg.Port)
				assert.Equal(t, -4, cfg.LogLevel)
				assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
			},
		},
		{
			name: "session override",
			envVars: map[string]string{
				"SESSION_SECRET":      "s3cret",
				"SESSION_COOKIE_NAME": "sid",
				"SESSION_SECURE":      "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "s3cret", cfg.Session.Secret)
				assert.Equal(t, "sid", cfg.Session.CookieName)
				assert.True(t, cfg.Session.Secure)
			},
		},
		{
			name: "postgres backend",
			envVars: map[string]string{
				"STORE_BACKEND": "postgres",
				"DATABASE_DSN":  "postgres://u:p@db:5432/auth",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, BackendPostgres, cfg.Backend)
				assert.Equal(t, "postgres://u:p@db:5432/auth", cfg.Database.DSN)
			},
		},
		{
			name: "datastore backend",
			envVars: map[string]string{
				"STORE_BACKEND":        "datastore",
				"DATASTORE_PROJECT_ID": "my-project",
				"DATASTORE_NAMESPACE":  "auth",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "my-project", cfg.Datastore.ProjectID)
				assert.Equal(t, "auth", cfg.Datastore.Namespace)
			},
		},
		{
			name: "google enabled",
			envVars: map[string]string{
				"GOOGLE_CLIENT_ID":     "id",
				"GOOGLE_CLIENT_SECRET": "secret",
				"OAUTH_FAILURE_URL":    "https://app.example.com/login",
			},
			expected: func(cfg *Config) {
				assert.True(t, cfg.GoogleEnabled())
				assert.Equal(t, "https://app.example.com/login", cfg.OAuthFailureURL)
			},
		},
		{
			name: "google needs both credentials",
			envVars: map[string]string{
				"GOOGLE_CLIENT_ID": "id",
			},
			expected: func(cfg *Config) {
				assert.False(t, cfg.GoogleEnabled())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg, err := NewConfig()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "redis")
		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("datastore without project", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "datastore")
		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("SESSION_SECURE", "maybe")
		_, err := NewConfig()
		assert.Error(t, err)
	})
}
