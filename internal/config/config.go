// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clinscribe/clinscribe/internal/secrets"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// Config is the top-level ClinScribe configuration.
type Config struct {
	Listen      string                    `mapstructure:"listen"`
	CORSOrigins []string                  `mapstructure:"cors_origins"`
	Providers   map[string]ProviderConfig `mapstructure:"providers"`
	Inference   InferenceConfig           `mapstructure:"inference"`
}

// ProviderConfig holds credentials and model selection for an LLM provider.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// InferenceConfig controls failover order and sampling knobs.
type InferenceConfig struct {
	Failover       []string      `mapstructure:"failover"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	Temperature    float32       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	TopP           float32       `mapstructure:"top_p"`
	MaxSuggestions int           `mapstructure:"max_suggestions"`
}

// knownProviders are the provider backends this build can construct.
var knownProviders = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"google":    true,
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix CLINSCRIBE_). When store is
// non-nil, keyring:// URI values are resolved through it before
// unmarshalling.
func Load(path string, store secrets.Store) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("listen", "127.0.0.1:8754")
	v.SetDefault("inference.failover", []string{"anthropic", "openai", "google"})
	v.SetDefault("inference.attempt_timeout", "30s")
	v.SetDefault("inference.cooldown", "5m")
	v.SetDefault("inference.temperature", 0.2)
	v.SetDefault("inference.max_tokens", 1500)
	v.SetDefault("inference.top_p", 0.9)
	v.SetDefault("inference.max_suggestions", 8)

	// Environment
	v.SetEnvPrefix("CLINSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, cserr.Errorf(cserr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	if store != nil {
		secrets.ResolveViperSecrets(v, store)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cserr.Errorf(cserr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, cserr.Errorf(cserr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Configured reports whether any provider has a credential. A config with
// no credentials is valid; inference then routes straight to the
// deterministic fallbacks.
func (c *Config) Configured() bool {
	for _, p := range c.Providers {
		if p.APIKey != "" {
			return true
		}
	}
	return false
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateListen()...)
	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateInference()...)

	return errs
}

func (c *Config) validateListen() []error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue, "config: listen must not be empty"))
		return errs
	}

	host, portStr, err := net.SplitHostPort(c.Listen)
	if err != nil {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: listen must be a valid host:port address, got %q: %w",
			c.Listen, err,
		))
		return errs
	}
	_ = host // host can be empty (e.g., ":8080"), which is valid

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	for name := range c.Providers {
		if !knownProviders[name] {
			errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a supported provider (expected one of [anthropic, google, openai])",
				name,
			))
		}
	}

	return errs
}

func (c *Config) validateInference() []error {
	var errs []error

	for i, name := range c.Inference.Failover {
		if !knownProviders[name] {
			errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
				"config: inference.failover[%d] %q is not a supported provider",
				i, name,
			))
			continue
		}
		if c.Providers != nil {
			// Only cross-reference providers when the providers section
			// exists in config. A nil map means no providers section was
			// configured (defaults only on fresh install), which is valid.
			if _, ok := c.Providers[name]; !ok {
				errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
					"config: inference.failover[%d] references provider %q which is not configured",
					i, name,
				))
			}
		}
	}

	if c.Inference.AttemptTimeout <= 0 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.attempt_timeout must be greater than 0, got %s",
			c.Inference.AttemptTimeout,
		))
	}

	if c.Inference.Cooldown <= 0 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.cooldown must be greater than 0, got %s",
			c.Inference.Cooldown,
		))
	}

	if c.Inference.Temperature < 0 || c.Inference.Temperature > 2 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.temperature must be between 0 and 2, got %g",
			c.Inference.Temperature,
		))
	}

	if c.Inference.TopP <= 0 || c.Inference.TopP > 1 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.top_p must be in (0, 1], got %g",
			c.Inference.TopP,
		))
	}

	if c.Inference.MaxTokens <= 0 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.max_tokens must be greater than 0, got %d",
			c.Inference.MaxTokens,
		))
	}

	if c.Inference.MaxSuggestions <= 0 {
		errs = append(errs, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"config: inference.max_suggestions must be greater than 0, got %d",
			c.Inference.MaxSuggestions,
		))
	}

	return errs
}
