// Package xrandr is the X11 RandR backend: it probes the live output
// topology and applies profile layouts through CRTC configuration. It is
// the only package that talks to the display server.
package xrandr

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

type (
	// Output is one connector as reported by the display server.
	Output struct {
		Name      string
		Connected bool
		Active    bool
		Primary   bool

		// Monitor identifies the attached panel from its EDID, e.g.
		// "DEL-10532-809716237". Empty when no EDID is exposed.
		Monitor string

		Width  int
		Height int
		X      int
		Y      int
	}

	// Topology is the live set of outputs, refreshed on every probe and
	// never cached across invocations.
	Topology struct {
		Outputs []Output
	}

	// Command asks for one output to be driven at a mode and position.
	Command struct {
		Output  string
		Width   int
		Height  int
		X       int
		Y       int
		Primary bool
	}

	// Plan is the desired end state: the listed outputs get enabled and
	// every other output driving a CRTC gets switched off, so the result
	// is deterministic regardless of what was configured before.
	Plan struct {
		Enable []Command
	}

	// ApplyError is a per-output apply failure. Applying continues past
	// it; some outputs configured beats a headless session.
	ApplyError struct {
		Output string
		Err    error
	}

	// Result reports what an apply actually did.
	Result struct {
		Enabled  []string
		Disabled []string
		Failures []ApplyError
	}
)

func (e ApplyError) Error() string {
	return fmt.Sprintf("configuring output %s: %v", e.Output, e.Err)
}

func (e ApplyError) Unwrap() error {
	return e.Err
}

// ConnectedNames returns the names of connected outputs.
func (t Topology) ConnectedNames() []string {
	var names []string
	for _, o := range t.Outputs {
		if o.Connected {
			names = append(names, o.Name)
		}
	}
	return names
}

// ActiveNames returns the names of outputs currently driving a CRTC.
func (t Topology) ActiveNames() []string {
	var names []string
	for _, o := range t.Outputs {
		if o.Active {
			names = append(names, o.Name)
		}
	}
	return names
}

// Primary returns the current primary output, if one is set.
func (t Topology) Primary() (Output, bool) {
	for _, o := range t.Outputs {
		if o.Primary {
			return o, true
		}
	}
	return Output{}, false
}

// DidEnable reports whether the result successfully enabled the output.
func (r Result) DidEnable(name string) bool {
	for _, o := range r.Enabled {
		if o == name {
			return true
		}
	}
	return false
}

// Conn wraps the X connection with the RandR extension initialized.
type Conn struct {
	x      *xgb.Conn
	screen *xproto.ScreenInfo
}

// Connect dials the X server. Failure here means there is no display to
// configure and the whole pipeline is moot.
func Connect() (*Conn, error) {
	x, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}

	if err := randr.Init(x); err != nil {
		x.Close()
		return nil, fmt.Errorf("initializing randr extension: %w", err)
	}

	return &Conn{
		x:      x,
		screen: xproto.Setup(x).DefaultScreen(x),
	}, nil
}

func (c *Conn) Close() {
	c.x.Close()
}

func (c *Conn) root() xproto.Window {
	return c.screen.Root
}
