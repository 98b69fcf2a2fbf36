package battery

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	upowerDest        = "org.freedesktop.UPower"
	displayDevicePath = "/org/freedesktop/UPower/devices/DisplayDevice"
	deviceIfc         = "org.freedesktop.UPower.Device"
	propGetMethod     = "org.freedesktop.DBus.Properties.Get"

	percentageProp  = "Percentage"
	stateProp       = "State"
	timeToEmptyProp = "TimeToEmpty"
)

// UPower device states that count as "not discharging".
const (
	deviceStateCharging      uint32 = 1
	deviceStateFullyCharged  uint32 = 4
	deviceStatePendingCharge uint32 = 5
)

// UPowerSource reads the composite display device UPower exposes on the
// system bus, which aggregates multi-battery laptops into one reading.
type UPowerSource struct {
	conn *dbus.Conn
}

func NewUPowerSource() (*UPowerSource, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("creating dbus connection: %w", err)
	}

	return &UPowerSource{conn: conn}, nil
}

func (s *UPowerSource) Read(ctx context.Context) (Reading, error) {
	obj := s.conn.Object(upowerDest, displayDevicePath)

	var pct dbus.Variant
	if err := obj.CallWithContext(ctx, propGetMethod, 0, deviceIfc, percentageProp).Store(&pct); err != nil {
		return Reading{}, fmt.Errorf("getting %s: %w", percentageProp, err)
	}
	percent, ok := pct.Value().(float64)
	if !ok {
		return Reading{}, fmt.Errorf("unexpected type for %s", percentageProp)
	}

	var st dbus.Variant
	if err := obj.CallWithContext(ctx, propGetMethod, 0, deviceIfc, stateProp).Store(&st); err != nil {
		return Reading{}, fmt.Errorf("getting %s: %w", stateProp, err)
	}
	devState, ok := st.Value().(uint32)
	if !ok {
		return Reading{}, fmt.Errorf("unexpected type for %s", stateProp)
	}

	r := Reading{
		Percent:  clampPercent(int(percent + 0.5)),
		Charging: isCharging(devState),
		At:       time.Now(),
	}

	// TimeToEmpty is best effort; UPower reports 0 when unknown.
	var tte dbus.Variant
	if err := obj.CallWithContext(ctx, propGetMethod, 0, deviceIfc, timeToEmptyProp).Store(&tte); err == nil {
		if secs, ok := tte.Value().(int64); ok && secs > 0 {
			r.TimeRemaining = time.Duration(secs) * time.Second
		}
	}

	return r, nil
}

func (s *UPowerSource) Close() error {
	return s.conn.Close()
}

func isCharging(devState uint32) bool {
	switch devState {
	case deviceStateCharging, deviceStateFullyCharged, deviceStatePendingCharge:
		return true
	default:
		return false
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
