package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:   "development",
		Database: DatabaseConfig{MaxConns: 20, ConnectTimeout: 5 * time.Second, AcquireTimeout: 2 * time.Second, IdleTimeout: 30 * time.Second},
		JWT:      JWTConfig{Secret: DefaultJWTSecret, ExpireHours: 168},
		Security: SecurityConfig{BcryptCost: 12},
		Storage:  StorageConfig{Driver: "local", UploadDir: "uploads", MaxUploadMB: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "development defaults", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "default secret in production", mutate: func(c *Config) { c.AppEnv = "production" }, wantErr: "must be changed"},
		{name: "short secret in production", mutate: func(c *Config) {
			c.AppEnv = "production"
			c.JWT.Secret = "short-but-not-default"
		}, wantErr: "at least 32 bytes"},
		{name: "strong secret in production", mutate: func(c *Config) {
			c.AppEnv = "Production"
			c.JWT.Secret = strings.Repeat("k", 32)
		}},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.ExpireHours = 0 }, wantErr: "JWT_EXPIRE_HOURS"},
		{name: "zero pool", mutate: func(c *Config) { c.Database.MaxConns = 0 }, wantErr: "DB_MAX_CONNS"},
		{name: "s3 without bucket", mutate: func(c *Config) {
			c.Storage.Driver = "s3"
			c.AWS.Region = "eu-west-1"
		}, wantErr: "AWS_S3_PHOTOS_BUCKET"},
		{name: "s3 complete", mutate: func(c *Config) {
			c.Storage.Driver = "s3"
			c.AWS.Region = "eu-west-1"
			c.AWS.PhotosBucket = "garden-photos"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "ftp" }, wantErr: "unknown STORAGE_DRIVER"},
		{name: "bcrypt cost", mutate: func(c *Config) { c.Security.BcryptCost = 2 }, wantErr: "BCRYPT_COST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRE_HOURS", "")
	t.Setenv("DB_MAX_CONNS", "")
	t.Setenv("DB_CONNECT_TIMEOUT_SEC", "")
	t.Setenv("DB_ACQUIRE_TIMEOUT_SEC", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("BCRYPT_COST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.Database.AcquireTimeout)
	assert.Equal(t, 30*time.Second, cfg.Database.IdleTimeout)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.False(t, cfg.IsProduction())
}

func TestAllowedOrigins(t *testing.T) {
	s := ServerConfig{CORSAllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.AllowedOrigins())
}
