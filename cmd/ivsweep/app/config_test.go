package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peregrinescode/keithley2614B/logger"
	"github.com/peregrinescode/keithley2614B/tsp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, `
settings:
  address: TCPIP::192.168.0.2::5025::SOCKET
  logLevel: debug
  queryTimeout: 30s
sweep:
  variant: linear-repeated
  startV: 0
  stopV: 2
  stepV: 0.1
  settleTime: 50ms
  complianceExp: -6
  repeats: 2
storage:
  database: sweeps.db
`)

	config, err := LoadConfig(path)
	require.NoError(err)

	require.Equal("TCPIP::192.168.0.2::5025::SOCKET", config.Settings.Address)
	require.Equal(30*time.Second, time.Duration(config.Settings.QueryTimeout))
	require.Equal(logger.DebugLevel, config.Level())
	require.Equal("sweeps.db", config.Storage.Database)

	spec, err := config.Spec()
	require.NoError(err)
	require.Equal(tsp.LinearRepeated, spec.Variant)
	require.Equal(50*time.Millisecond, spec.SettleTime)
	require.Equal(2, spec.Repeats)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing address",
			content: `
sweep:
  variant: linear
  stopV: 1
  stepV: 0.1
  complianceExp: -6
`,
		},
		{
			name: "unknown variant",
			content: `
settings:
  address: host:5025
sweep:
  variant: logarithmic
`,
		},
		{
			name: "invalid spec",
			content: `
settings:
  address: host:5025
sweep:
  variant: linear
  startV: 1
  stopV: 1
  stepV: 0.1
  complianceExp: -6
`,
		},
		{
			name: "bad duration",
			content: `
settings:
  address: host:5025
  queryTimeout: soon
sweep:
  variant: linear
  stopV: 1
  stepV: 0.1
  complianceExp: -6
`,
		},
		{
			name:    "malformed yaml",
			content: "settings: [",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, test.content))
			require.Error(t, err)
		})
	}
}

func TestConfigLevelDefault(t *testing.T) {
	config := &Config{}
	require.Equal(t, logger.InfoLevel, config.Level())
}
