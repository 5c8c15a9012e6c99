package instrument

import (
	"errors"
	"fmt"
	"time"

	"github.com/peregrinescode/keithley2614B/logger"
)

// Default session settings.
const (
	DefaultDialTimeout  = 3 * time.Second
	DefaultQueryTimeout = 10 * time.Second
	DefaultBaudRate     = 9600
)

// Query timeout limits. The upper bound exists to keep a wedged instrument
// from blocking a buffer read indefinitely.
const (
	MinQueryTimeout = 100 * time.Millisecond
	MaxQueryTimeout = 5 * time.Minute
)

// Config holds all configuration for an instrument session.
type Config struct {
	dialTimeout  time.Duration
	queryTimeout time.Duration
	baudRate     int
	logger       logger.Logger
}

// NewConfig creates a session configuration with defaults applied, then the
// given functional options in order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		dialTimeout:  DefaultDialTimeout,
		queryTimeout: DefaultQueryTimeout,
		baudRate:     DefaultBaudRate,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// DialTimeout returns the transport dial timeout.
func (cfg *Config) DialTimeout() time.Duration { return cfg.dialTimeout }

// QueryTimeout returns the bounded window a query waits for a response line.
func (cfg *Config) QueryTimeout() time.Duration { return cfg.queryTimeout }

// BaudRate returns the serial baud rate used for ASRL resources.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a session.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithDialTimeout sets the transport dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("instrument: dial timeout must be positive")
		}
		cfg.dialTimeout = d

		return nil
	})
}

// WithQueryTimeout sets the bounded window a query waits for a response line.
func WithQueryTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinQueryTimeout || d > MaxQueryTimeout {
			return fmt.Errorf("instrument: query timeout %v out of range [%v, %v]",
				d, MinQueryTimeout, MaxQueryTimeout)
		}
		cfg.queryTimeout = d

		return nil
	})
}

// WithBaudRate sets the serial baud rate for ASRL resources.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("instrument: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithLogger sets the logger used by the session.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("instrument: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
