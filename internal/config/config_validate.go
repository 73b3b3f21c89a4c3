// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package config

import (
	"fmt"

	"github.com/AlexandrFenrir/lumeris/internal/logging"
	"github.com/AlexandrFenrir/lumeris/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	return c.validateState()
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got: %s", c.Logging.Level)
	}
	return nil
}

// validateBackend validates the backend URL (only if enabled)
func (c *Config) validateBackend() error {
	if !c.Backend.Enabled {
		return nil
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required when BACKEND_ENABLED=true")
	}
	return validateHTTPURL(c.Backend.URL, "BACKEND_URL")
}

// validateEngine checks cross-field constraints the struct tags cannot express.
func (c *Config) validateEngine() error {
	e := &c.Engine
	if e.DefaultHorizon > e.MaxHorizon {
		return fmt.Errorf("engine.default_horizon (%d) must not exceed engine.max_horizon (%d)",
			e.DefaultHorizon, e.MaxHorizon)
	}
	if e.DefaultRecommendations > e.MaxRecommendations {
		return fmt.Errorf("engine.default_recommendations (%d) must not exceed engine.max_recommendations (%d)",
			e.DefaultRecommendations, e.MaxRecommendations)
	}
	return nil
}

func (c *Config) validateState() error {
	if c.State.Enabled && c.State.Path == "" {
		return fmt.Errorf("STATE_PATH is required when STATE_ENABLED=true")
	}
	return nil
}
