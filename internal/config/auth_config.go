package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLen is the minimum length in bytes for token signing secrets.
const minSecretLen = 32

// AuthConfig contains the session authentication configuration: token
// signing secrets, token and cache lifetimes, and the password hashing
// work factor.
type AuthConfig struct {
	// AccessSecret and RefreshSecret sign the two token kinds. They must
	// be distinct so that leaking one secret cannot forge the other kind.
	AccessSecret  string `env:"ACCESS_SECRET,required"`
	RefreshSecret string `env:"REFRESH_SECRET,required"`

	AccessTTLSeconds  int `env:"ACCESS_TTL_SECONDS"  envDefault:"1800"`
	RefreshTTLSeconds int `env:"REFRESH_TTL_SECONDS" envDefault:"1209600"`

	HashCostFactor int `env:"HASH_COST_FACTOR" envDefault:"12"`

	CacheTTLSeconds           int `env:"CACHE_TTL_SECONDS"            envDefault:"3600"`
	ClockSkewToleranceSeconds int `env:"CLOCK_SKEW_TOLERANCE_SECONDS" envDefault:"0"`
}

// Validate checks secret strength and lifetime ordering.
func (c AuthConfig) Validate() error {
	if len(c.AccessSecret) < minSecretLen {
		return fmt.Errorf("ACCESS_SECRET must be at least %d bytes", minSecretLen)
	}
	if len(c.RefreshSecret) < minSecretLen {
		return fmt.Errorf("REFRESH_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("ACCESS_SECRET and REFRESH_SECRET must be distinct")
	}
	if c.AccessTTLSeconds <= 0 {
		return fmt.Errorf("ACCESS_TTL_SECONDS must be positive")
	}
	if c.RefreshTTLSeconds <= c.AccessTTLSeconds {
		return fmt.Errorf("REFRESH_TTL_SECONDS must exceed ACCESS_TTL_SECONDS")
	}
	if c.HashCostFactor < bcrypt.MinCost || c.HashCostFactor > bcrypt.MaxCost {
		return fmt.Errorf("HASH_COST_FACTOR must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.ClockSkewToleranceSeconds < 0 {
		return fmt.Errorf("CLOCK_SKEW_TOLERANCE_SECONDS must not be negative")
	}
	return nil
}

// AccessTTL returns the access token lifetime.
func (c AuthConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLSeconds) * time.Second
}

// RefreshTTL returns the refresh token lifetime.
func (c AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLSeconds) * time.Second
}

// CacheTTL returns the session cache entry lifetime.
func (c AuthConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ClockSkewTolerance returns the leeway applied to token expiry checks.
func (c AuthConfig) ClockSkewTolerance() time.Duration {
	return time.Duration(c.ClockSkewToleranceSeconds) * time.Second
}
