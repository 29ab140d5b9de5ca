package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-island/internal/relay"
)

// RelayConfig runs a development island server inside the client process.
type RelayConfig struct {
	Enabled       bool   `json:"enabled"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	StartTimeout  string `json:"start_timeout"`
	ChatInterval  string `json:"chat_interval"`
	SweepInterval string `json:"sweep_interval"`
}

func (c *RelayConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartTimeout != "" {
		_, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("relay: parsing start_timeout: %w", err))
		}
	}
	if c.ChatInterval != "" {
		_, err := time.ParseDuration(c.ChatInterval)
		if err != nil {
			el.Add(fmt.Errorf("relay: parsing chat_interval: %w", err))
		}
	}
	if c.SweepInterval != "" {
		_, err := time.ParseDuration(c.SweepInterval)
		if err != nil {
			el.Add(fmt.Errorf("relay: parsing sweep_interval: %w", err))
		}
	}
	if c.Port < -1 || c.Port > 65535 {
		el.Add(fmt.Errorf("relay: port %d out of range", c.Port))
	}

	return el.Err()
}

func (c *RelayConfig) buildRelay() (*relay.Relay, error) {
	var opts []relay.RelayOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, relay.WithStartTimeout(d))
	}
	if c.ChatInterval != "" {
		d, err := time.ParseDuration(c.ChatInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing chat_interval: %w", err)
		}
		opts = append(opts, relay.WithChatInterval(d))
	}
	if c.SweepInterval != "" {
		d, err := time.ParseDuration(c.SweepInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing sweep_interval: %w", err)
		}
		opts = append(opts, relay.WithSweepInterval(d))
	}
	if c.Host != "" {
		opts = append(opts, relay.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, relay.WithPort(c.Port))
	}

	return relay.NewRelay(opts...)
}
