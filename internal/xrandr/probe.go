package xrandr

import (
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"gitlab.com/lehn/edid"
)

// Topology queries the display server for the current set of outputs.
// The result is built fresh on every call; hardware can change between
// any two invocations.
func (c *Conn) Topology() (Topology, error) {
	resources, err := randr.GetScreenResources(c.x, c.root()).Reply()
	if err != nil {
		return Topology{}, fmt.Errorf("getting screen resources: %w", err)
	}

	primary, err := randr.GetOutputPrimary(c.x, c.root()).Reply()
	if err != nil {
		return Topology{}, fmt.Errorf("getting primary output: %w", err)
	}

	var topo Topology
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(c.x, id, 0).Reply()
		if err != nil {
			return Topology{}, fmt.Errorf("getting output info: %w", err)
		}

		out := Output{
			Name:      string(info.Name),
			Connected: info.Connection != randr.ConnectionDisconnected,
			Primary:   id == primary.Output,
			Monitor:   monitorIdentifier(c.x, id),
		}

		if info.Crtc != 0 {
			crtcInfo, err := randr.GetCrtcInfo(c.x, info.Crtc, 0).Reply()
			if err != nil {
				return Topology{}, fmt.Errorf("getting crtc info for %s: %w", out.Name, err)
			}

			out.Active = true
			out.X = int(crtcInfo.X)
			out.Y = int(crtcInfo.Y)
			if mi := modeInfo(resources, crtcInfo.Mode); mi != nil {
				out.Width = int(mi.Width)
				out.Height = int(mi.Height)
			}
		}

		topo.Outputs = append(topo.Outputs, out)
	}

	return topo, nil
}

// monitorIdentifier builds a stable monitor identity from the output's
// EDID property. Best effort: outputs without EDID just get "".
func monitorIdentifier(x *xgb.Conn, output randr.Output) string {
	at, err := xproto.InternAtom(x, false, 4, "EDID").Reply()
	if err != nil {
		slog.Debug("interning EDID atom", "error", err)
		return ""
	}

	prop, err := randr.GetOutputProperty(x, output, at.Atom, xproto.GetPropertyTypeAny, 0, 128, false, false).Reply()
	if err != nil || len(prop.Data) < 128 {
		return ""
	}

	e, err := edid.New(prop.Data)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("%s-%d-%d", string(e.PNPID[:]), e.Model, e.Serial)
}

func modeInfo(resources *randr.GetScreenResourcesReply, mode randr.Mode) *randr.ModeInfo {
	for _, mi := range resources.Modes {
		if mi.Id == uint32(mode) {
			return &mi
		}
	}
	return nil
}
