package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/socket/natsdial"
	"github.com/pixil98/go-island/internal/socket/wsdial"
)

type TransportType int

const (
	TransportWebsocket TransportType = iota
	TransportNats
)

func (tt *TransportType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "websocket", "ws":
		*tt = TransportWebsocket
	case "nats":
		*tt = TransportNats
	default:
		return fmt.Errorf("unknown transport: %s", text)
	}
	return nil
}

func (tt TransportType) String() string {
	if tt == TransportNats {
		return "nats"
	}
	return "websocket"
}

type ServerConfig struct {
	URL            string        `json:"url" env:"ISLAND_SERVER_URL"`
	Transport      TransportType `json:"transport"`
	AccessToken    string        `json:"access_token" env:"ISLAND_ACCESS_TOKEN"`
	InitialBackoff string        `json:"initial_backoff"`
	MaxBackoff     string        `json:"max_backoff"`
	MaxAttempts    int           `json:"max_attempts"`
}

// validate checks the server settings. With an embedded relay the URL comes
// from the relay and the transport must be nats.
func (c *ServerConfig) validate(relay bool) error {
	el := errors.NewErrorList()

	if relay {
		if c.Transport != TransportNats {
			el.Add(fmt.Errorf("server: the embedded relay needs the nats transport"))
		}
	} else if c.URL == "" {
		el.Add(fmt.Errorf("server: url is required"))
	} else {
		u, err := url.Parse(c.URL)
		if err != nil {
			el.Add(fmt.Errorf("server: parsing url: %w", err))
		} else if !schemeFits(c.Transport, u.Scheme) {
			el.Add(fmt.Errorf("server: scheme %q does not fit the %s transport", u.Scheme, c.Transport))
		}
	}

	for name, v := range map[string]string{"initial_backoff": c.InitialBackoff, "max_backoff": c.MaxBackoff} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			el.Add(fmt.Errorf("server: parsing %s: %w", name, err))
		}
	}

	if c.MaxAttempts < 0 {
		el.Add(fmt.Errorf("server: max_attempts must not be negative"))
	}

	return el.Err()
}

func schemeFits(tt TransportType, scheme string) bool {
	switch tt {
	case TransportNats:
		return scheme == "nats" || scheme == "tls"
	default:
		return scheme == "ws" || scheme == "wss"
	}
}

// buildDialer connects the transport. The returned function releases it.
func (c *ServerConfig) buildDialer(serverURL, playerID string, token wsdial.TokenSource) (socket.Dialer, func(), error) {
	switch c.Transport {
	case TransportNats:
		d, err := natsdial.Connect(serverURL, playerID)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil

	default:
		opts := []wsdial.Opt{wsdial.WithTokenSource(token)}
		initial, _ := time.ParseDuration(c.InitialBackoff)
		maxBackoff, _ := time.ParseDuration(c.MaxBackoff)
		if initial > 0 || maxBackoff > 0 {
			if initial <= 0 {
				initial = wsdial.DefaultInitialBackoff
			}
			if maxBackoff <= 0 {
				maxBackoff = wsdial.DefaultMaxBackoff
			}
			opts = append(opts, wsdial.WithBackoff(initial, maxBackoff))
		}
		if c.MaxAttempts > 0 {
			opts = append(opts, wsdial.WithMaxAttempts(c.MaxAttempts))
		}
		return wsdial.New(serverURL, opts...), func() {}, nil
	}
}
