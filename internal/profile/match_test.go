package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiles() []Profile {
	return []Profile{
		{
			Name: "docked",
			Placements: []Placement{
				{Output: "eDP-1", Width: 1920, Height: 1080, Primary: true},
				{Output: "DP-1", Width: 2560, Height: 1440, X: 1920},
			},
		},
		{
			Name: "laptop",
			Placements: []Placement{
				{Output: "eDP-1", Width: 1920, Height: 1080, Primary: true},
			},
		},
		{
			Name: "presentation",
			Placements: []Placement{
				{Output: "eDP-1", Width: 1920, Height: 1080, Primary: true},
				{Output: "HDMI-1", Width: 1920, Height: 1080, X: 1920},
			},
		},
	}
}

func TestMatchExactSet(t *testing.T) {
	profiles := testProfiles()

	p, ok := Match([]string{"DP-1", "eDP-1"}, profiles)
	require.True(t, ok)
	assert.Equal(t, "docked", p.Name)

	p, ok = Match([]string{"eDP-1"}, profiles)
	require.True(t, ok)
	assert.Equal(t, "laptop", p.Name)
}

func TestMatchExtraOutputDoesNotHalfMatch(t *testing.T) {
	// An unexpected third monitor must not fall through to the two-output
	// profile that is a subset of the connected set.
	_, ok := Match([]string{"eDP-1", "DP-1", "DP-2"}, testProfiles())
	assert.False(t, ok)
}

func TestMatchFirstInConfigOrderWins(t *testing.T) {
	profiles := []Profile{
		{Name: "first", Placements: []Placement{{Output: "eDP-1", Width: 1920, Height: 1080, Primary: true}}},
		{Name: "second", Placements: []Placement{{Output: "eDP-1", Width: 1280, Height: 720, Primary: true}}},
	}

	for i := 0; i < 10; i++ {
		p, ok := Match([]string{"eDP-1"}, profiles)
		require.True(t, ok)
		require.Equal(t, "first", p.Name)
	}
}

func TestMatchDefaultFallback(t *testing.T) {
	profiles := append(testProfiles(), Profile{Name: DefaultName})

	p, ok := Match([]string{"DP-3"}, profiles)
	require.True(t, ok)
	assert.Equal(t, DefaultName, p.Name)
	assert.True(t, p.IsDefault())
}

func TestMatchNoProfileApplies(t *testing.T) {
	_, ok := Match([]string{"DP-3"}, testProfiles())
	assert.False(t, ok)
}

func TestMatchDefaultNeverBeatsExactMatch(t *testing.T) {
	profiles := append([]Profile{{Name: DefaultName}}, testProfiles()...)

	p, ok := Match([]string{"eDP-1"}, profiles)
	require.True(t, ok)
	assert.Equal(t, "laptop", p.Name)
}

func TestNextApplicableWrapsAndSkipsCurrent(t *testing.T) {
	profiles := testProfiles()
	connected := []string{"eDP-1", "DP-1", "HDMI-1"}

	p, ok := NextApplicable("docked", connected, profiles)
	require.True(t, ok)
	assert.Equal(t, "laptop", p.Name)

	p, ok = NextApplicable("presentation", connected, profiles)
	require.True(t, ok)
	assert.Equal(t, "docked", p.Name)
}

func TestNextApplicableToleratesExtraOutputs(t *testing.T) {
	// Cycling is an explicit user action, so a profile whose outputs are
	// a subset of the connected set is still a valid target.
	p, ok := NextApplicable("docked", []string{"eDP-1", "DP-1", "DP-2"}, testProfiles())
	require.True(t, ok)
	assert.Equal(t, "laptop", p.Name)
}

func TestNextApplicableSkipsDefaultAndDisconnected(t *testing.T) {
	profiles := append(testProfiles(), Profile{Name: DefaultName})

	// Only eDP-1 connected: docked and presentation need monitors that
	// are not there, and the default profile is not a cycle target.
	_, ok := NextApplicable("laptop", []string{"eDP-1"}, profiles)
	assert.False(t, ok)
}
