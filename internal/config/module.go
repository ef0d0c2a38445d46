package config

import "go.uber.org/fx"

// Module exposes the sections of a supplied *Config to the other modules
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *APIConfig { return &c.API },
		func(c *Config) *SessionConfig { return &c.Session },
		func(c *Config) *NormalizeConfig { return &c.Normalize },
		func(c *Config) *LoggingConfig { return &c.Logging },
	),
)
