package command

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string        `json:"tick_interval"`
	ClientID     string        `json:"client_id" env:"ISLAND_CLIENT_ID"`
	Console      bool          `json:"console"`
	Server       ServerConfig  `json:"server"`
	Storage      StorageConfig `json:"storage"`
	Relay        RelayConfig   `json:"relay"`
	Logging      LoggingConfig `json:"logging"`
}

// Validate applies environment overrides and checks the result.
func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if err := env.Parse(c); err != nil {
		el.Add(fmt.Errorf("parsing environment: %w", err))
	}

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("tick_interval must be positive"))
		}
	}

	el.Add(c.Server.validate(c.Relay.Enabled))
	el.Add(c.Storage.validate())
	el.Add(c.Relay.validate())
	el.Add(c.Logging.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
