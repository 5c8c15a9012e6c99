package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/peregrinescode/keithley2614B/logger"
	"github.com/peregrinescode/keithley2614B/tsp"
)

// Sweep variant names accepted in the configuration file.
const (
	VariantLinear         = "linear"
	VariantLinearRepeated = "linear-repeated"
	VariantListDriven     = "list-driven"
	VariantSquareHold     = "square-hold"
)

// Duration wraps time.Duration so YAML values like "50ms" or "30s" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)

	return nil
}

// Config represents the main application configuration.
type Config struct {
	Settings Settings    `yaml:"settings"`
	Sweep    SweepConfig `yaml:"sweep"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings.
type Settings struct {
	// Address is the instrument resource, e.g.
	// "TCPIP::192.168.0.2::5025::SOCKET" or "ASRL::/dev/ttyUSB0::9600".
	Address string `yaml:"address"`

	LogLevel     string   `yaml:"logLevel"`
	QueryTimeout Duration `yaml:"queryTimeout"`
}

// SweepConfig describes the sweep to execute.
type SweepConfig struct {
	Variant       string    `yaml:"variant"`
	StartV        float64   `yaml:"startV"`
	StopV         float64   `yaml:"stopV"`
	StepV         float64   `yaml:"stepV"`
	SettleTime    Duration  `yaml:"settleTime"`
	ComplianceExp int       `yaml:"complianceExp"`
	Repeats       int       `yaml:"repeats"`
	VoltageList   []float64 `yaml:"voltageList"`
	HoldPoints    int       `yaml:"holdPoints"`
	Cycles        int       `yaml:"cycles"`
	NPLC          float64   `yaml:"nplc"`
	DelayFactor   float64   `yaml:"delayFactor"`
}

// StorageConfig represents storage settings.
type StorageConfig struct {
	// Database is the SQLite database path. Empty disables persistence.
	Database string `yaml:"database"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Settings.Address == "" {
		return nil, fmt.Errorf("no instrument address configured")
	}
	if _, err = config.Spec(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Level returns the configured logging level, defaulting to info.
func (c *Config) Level() logger.Level {
	switch c.Settings.LogLevel {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

// Spec translates the sweep section into a validated sweep specification.
func (c *Config) Spec() (*tsp.SweepSpec, error) {
	spec := &tsp.SweepSpec{
		StartV:        c.Sweep.StartV,
		StopV:         c.Sweep.StopV,
		StepV:         c.Sweep.StepV,
		SettleTime:    time.Duration(c.Sweep.SettleTime),
		ComplianceExp: c.Sweep.ComplianceExp,
		Repeats:       c.Sweep.Repeats,
		VoltageList:   c.Sweep.VoltageList,
		HoldPoints:    c.Sweep.HoldPoints,
		Cycles:        c.Sweep.Cycles,
		NPLC:          c.Sweep.NPLC,
		DelayFactor:   c.Sweep.DelayFactor,
	}

	switch c.Sweep.Variant {
	case VariantLinear:
		spec.Variant = tsp.Linear
	case VariantLinearRepeated:
		spec.Variant = tsp.LinearRepeated
	case VariantListDriven:
		spec.Variant = tsp.ListDriven
	case VariantSquareHold:
		spec.Variant = tsp.SquareHold
	default:
		return nil, fmt.Errorf("unknown sweep variant %q", c.Sweep.Variant)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return spec, nil
}
