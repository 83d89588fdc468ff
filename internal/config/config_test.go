package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:         "8000",
		DBPassword:   "secure-password",
		DBSSLMode:    "disable",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		JWTAlgorithm: "HS256",
		TokenTTLMin:  1440,
		AITimeoutSec: 15,
		Env:          "development",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Unsupported algorithm", func(c *Config) { c.JWTAlgorithm = "RS256" }, true},
		{"Empty algorithm", func(c *Config) { c.JWTAlgorithm = "" }, true},
		{"HS512 accepted", func(c *Config) { c.JWTAlgorithm = "HS512" }, false},
		{"Zero token TTL", func(c *Config) { c.TokenTTLMin = 0 }, true},
		{"Negative AI timeout", func(c *Config) { c.AITimeoutSec = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production", func(c *Config) {}, false},
		{"Default secret rejected", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"Short secret rejected", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default DB password rejected", func(c *Config) { c.DBPassword = "password" }, true},
		{"Empty DB password rejected", func(c *Config) { c.DBPassword = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = "production"
			c.DBSSLMode = "require"
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
