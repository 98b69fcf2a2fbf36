package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `hook_dir: /etc/outputd/hooks
battery:
  low_threshold: 25
  critical_threshold: 12
  interval: 1m
profiles:
  - name: docked
    placements:
      - output: eDP-1
        width: 1920
        height: 1080
      - output: DP-1
        width: 2560
        height: 1440
        x: 1920
        primary: true
    audio_sinks:
      - hdmi
  - name: default
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigLoadsYAML(t *testing.T) {
	cfg, err := InitConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "/etc/outputd/hooks", cfg.HookDir)
	require.Len(t, cfg.Profiles, 2)

	docked := cfg.Profiles[0]
	assert.Equal(t, "docked", docked.Name)
	require.Len(t, docked.Placements, 2)
	assert.Equal(t, "DP-1", docked.PrimaryOutput())
	assert.Equal(t, []string{"hdmi"}, docked.AudioSinks)
	assert.True(t, cfg.Profiles[1].IsDefault())
}

func TestInitConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "profiles: []\n")
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(path), cfg.HookDir)
	assert.Equal(t, 20, cfg.Battery.LowThreshold)
	assert.Equal(t, 10, cfg.Battery.CriticalThreshold)
	assert.Equal(t, 5, cfg.Battery.Hysteresis)
	assert.Equal(t, 30*time.Second, cfg.Battery.Interval)
}

func TestInitConfigPartialBatteryOverride(t *testing.T) {
	cfg, err := InitConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Battery.LowThreshold)
	assert.Equal(t, 12, cfg.Battery.CriticalThreshold)
	assert.Equal(t, time.Minute, cfg.Battery.Interval)
	assert.Equal(t, 5, cfg.Battery.Hysteresis) // not set, default applies
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputd", "config.yaml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Profiles)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestInitConfigValidationError(t *testing.T) {
	bad := `profiles:
  - name: broken
    placements:
      - output: eDP-1
      - output: eDP-1
        width: 1920
        height: 1080
`
	_, err := InitConfig(writeConfig(t, bad))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Violations), 2)
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("profiles: []\n"), 0o644))

	reloaded, err := cfg.Reload()
	require.NoError(t, err)
	assert.Empty(t, reloaded.Profiles)
	assert.Equal(t, path, reloaded.Path())
}
