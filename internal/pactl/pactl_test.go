package pactl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sinks = []string{
	"alsa_output.pci-0000_00_1f.3.analog-stereo",
	"alsa_output.pci-0000_00_1f.3.hdmi-stereo",
	"bluez_output.AA_BB_CC_DD_EE_FF.1",
}

func TestPickSinkPatternOrderIsPreference(t *testing.T) {
	// hdmi is listed first, so it wins even though the analog sink comes
	// first in pactl's own ordering.
	sink, ok := PickSink(sinks, []string{"hdmi", "analog"})
	require.True(t, ok)
	assert.Equal(t, "alsa_output.pci-0000_00_1f.3.hdmi-stereo", sink)

	sink, ok = PickSink(sinks, []string{"bluez", "hdmi"})
	require.True(t, ok)
	assert.Equal(t, "bluez_output.AA_BB_CC_DD_EE_FF.1", sink)
}

func TestPickSinkFallsThroughUnmatchedPatterns(t *testing.T) {
	sink, ok := PickSink(sinks, []string{"usb", "analog"})
	require.True(t, ok)
	assert.Equal(t, "alsa_output.pci-0000_00_1f.3.analog-stereo", sink)
}

func TestPickSinkNoMatch(t *testing.T) {
	_, ok := PickSink(sinks, []string{"usb"})
	assert.False(t, ok)
}

func TestPickSinkSkipsInvalidPattern(t *testing.T) {
	sink, ok := PickSink(sinks, []string{"[", "analog"})
	require.True(t, ok)
	assert.Equal(t, "alsa_output.pci-0000_00_1f.3.analog-stereo", sink)
}

func TestNextSinkWrapsAround(t *testing.T) {
	next, err := NextSink(sinks, sinks[2])
	require.NoError(t, err)
	assert.Equal(t, sinks[0], next)

	next, err = NextSink(sinks, sinks[0])
	require.NoError(t, err)
	assert.Equal(t, sinks[1], next)
}

func TestNextSinkUnknownCurrentStartsAtFirst(t *testing.T) {
	next, err := NextSink(sinks, "gone-sink")
	require.NoError(t, err)
	assert.Equal(t, sinks[0], next)
}

func TestNextSinkEmpty(t *testing.T) {
	_, err := NextSink(nil, "anything")
	assert.Error(t, err)
}
