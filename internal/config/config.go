package config

import (
	"fmt"
	"time"
)

// MaxDefaultPairCount is the number of pairs the built-in A..Z symbol set can supply.
const MaxDefaultPairCount = 26

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Auth    AuthConfig    `mapstructure:"auth"    validate:"required"`
	Game    GameConfig    `mapstructure:"game"    validate:"required"`
	Session SessionConfig `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AuthConfig contains the settings for game-session tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// GameConfig describes the deck every new game is dealt from.
type GameConfig struct {
	// PairCount is N: the number of distinct symbols, each dealt twice.
	PairCount int `mapstructure:"pair_count" validate:"required,gt=0"`

	// Symbols overrides the default A..Z alphabet. The first PairCount entries are used.
	Symbols []string `mapstructure:"symbols" validate:"omitempty,unique,dive,required"`

	// MismatchDelayMS is how long a mismatched pair stays face up before it is hidden again.
	MismatchDelayMS int `mapstructure:"mismatch_delay_ms" validate:"gte=0"`
}

// MismatchDelay returns MismatchDelayMS as a time.Duration.
func (g GameConfig) MismatchDelay() time.Duration {
	return time.Duration(g.MismatchDelayMS) * time.Millisecond
}

// Validate checks the constraints that span more than one field.
func (g GameConfig) Validate() error {
	if len(g.Symbols) == 0 {
		if g.PairCount > MaxDefaultPairCount {
			return fmt.Errorf("game.pair_count %d exceeds the %d default symbols",
				g.PairCount, MaxDefaultPairCount)
		}
		return nil
	}
	if g.PairCount > len(g.Symbols) {
		return fmt.Errorf("game.pair_count %d exceeds the %d configured symbols",
			g.PairCount, len(g.Symbols))
	}
	return nil
}

// SessionConfig bounds how many games the server keeps in memory and for how long.
type SessionConfig struct {
	MaxSessions          int `mapstructure:"max_sessions"           validate:"required,gt=0"`
	IdleTimeoutMinutes   int `mapstructure:"idle_timeout_minutes"   validate:"required,gt=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"required,gt=0"`
}

// IdleTimeout returns IdleTimeoutMinutes as a time.Duration.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns SweepIntervalSeconds as a time.Duration.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}
