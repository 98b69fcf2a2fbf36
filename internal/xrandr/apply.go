package xrandr

import (
	"fmt"
	"log/slog"

	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// Apply drives the display server to the plan's end state: listed
// outputs get their mode, position and primary flag; every other output
// holding a CRTC is switched off. Failures are collected per output and
// the rest of the plan still goes through; nothing is rolled back.
func (c *Conn) Apply(plan Plan) Result {
	var res Result

	if err := xproto.GrabServerChecked(c.x).Check(); err != nil {
		res.Failures = append(res.Failures, ApplyError{Output: "server", Err: fmt.Errorf("grabbing server: %w", err)})
		return res
	}
	defer xproto.UngrabServerChecked(c.x).Check()

	resources, err := randr.GetScreenResources(c.x, c.root()).Reply()
	if err != nil {
		res.Failures = append(res.Failures, ApplyError{Output: "server", Err: fmt.Errorf("getting screen resources: %w", err)})
		return res
	}

	infos := make(map[string]outputHandle, len(resources.Outputs))
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(c.x, id, 0).Reply()
		if err != nil {
			// The name lives in the reply we failed to get, so the XID
			// label is the best identifier available.
			res.Failures = append(res.Failures, ApplyError{Output: outputLabel(id), Err: fmt.Errorf("getting output info: %w", err)})
			continue
		}
		infos[string(info.Name)] = outputHandle{id: id, info: info}
	}

	wanted := make(map[string]bool, len(plan.Enable))
	for _, cmd := range plan.Enable {
		wanted[cmd.Output] = true
	}

	// Switch off everything the plan doesn't mention. This runs first so
	// freed CRTCs become available to the outputs being enabled.
	for name, h := range infos {
		if wanted[name] || h.info.Crtc == 0 {
			continue
		}

		slog.Info("turning off output", "output", name)
		if _, err := randr.SetCrtcConfig(c.x, h.info.Crtc, 0, 0, 0, 0, 0,
			randr.RotationRotate0, []randr.Output{}).Reply(); err != nil {
			res.Failures = append(res.Failures, ApplyError{Output: name, Err: err})
			continue
		}
		res.Disabled = append(res.Disabled, name)
	}

	var display rect
	var primaryID randr.Output

	for _, cmd := range plan.Enable {
		h, ok := infos[cmd.Output]
		if !ok || h.info.Connection == randr.ConnectionDisconnected {
			res.Failures = append(res.Failures, ApplyError{Output: cmd.Output, Err: fmt.Errorf("output not connected")})
			continue
		}

		if err := c.enableOutput(resources, h, cmd); err != nil {
			res.Failures = append(res.Failures, ApplyError{Output: cmd.Output, Err: err})
			continue
		}

		res.Enabled = append(res.Enabled, cmd.Output)
		display.update(cmd.X, cmd.Y, cmd.Width, cmd.Height)
		if cmd.Primary {
			primaryID = h.id
		}
	}

	if len(res.Enabled) > 0 {
		if err := c.updateScreenSize(display); err != nil {
			res.Failures = append(res.Failures, ApplyError{Output: "screen", Err: err})
		}
	}

	if primaryID != 0 {
		if err := randr.SetOutputPrimaryChecked(c.x, c.root(), primaryID).Check(); err != nil {
			res.Failures = append(res.Failures, ApplyError{Output: "primary", Err: err})
		}
	}

	return res
}

// SetPrimary flags the named output as primary without touching modes.
func (c *Conn) SetPrimary(name string) error {
	resources, err := randr.GetScreenResources(c.x, c.root()).Reply()
	if err != nil {
		return fmt.Errorf("getting screen resources: %w", err)
	}

	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(c.x, id, 0).Reply()
		if err != nil {
			return fmt.Errorf("getting output info: %w", err)
		}
		if string(info.Name) == name {
			if err := randr.SetOutputPrimaryChecked(c.x, c.root(), id).Check(); err != nil {
				return fmt.Errorf("setting primary output: %w", err)
			}
			return nil
		}
	}

	return fmt.Errorf("output %s not found", name)
}

type outputHandle struct {
	id   randr.Output
	info *randr.GetOutputInfoReply
}

// outputLabel names an output by its XID for failures that happen
// before the output's name is known.
func outputLabel(id randr.Output) string {
	return fmt.Sprintf("output-0x%x", uint32(id))
}

func (c *Conn) enableOutput(resources *randr.GetScreenResourcesReply, h outputHandle, cmd Command) error {
	mode := findMode(resources, h.info, cmd.Width, cmd.Height)
	if mode == 0 {
		return fmt.Errorf("no %dx%d mode available", cmd.Width, cmd.Height)
	}

	crtc := h.info.Crtc
	if crtc == 0 {
		var err error
		crtc, err = c.pickAvailableCrtc(resources, h.id)
		if err != nil {
			return err
		}
	}

	slog.Info("configuring output", "output", cmd.Output,
		"mode", fmt.Sprintf("%dx%d", cmd.Width, cmd.Height),
		"position", fmt.Sprintf("%d,%d", cmd.X, cmd.Y))

	if _, err := randr.SetCrtcConfig(c.x, crtc, 0, 0, int16(cmd.X), int16(cmd.Y),
		mode, randr.RotationRotate0, []randr.Output{h.id}).Reply(); err != nil {
		return fmt.Errorf("setting crtc config: %w", err)
	}

	return nil
}

// findMode returns the output's mode matching the requested size. The
// output's mode list starts with its preferred modes, so the first size
// match also carries the best refresh rate.
func findMode(resources *randr.GetScreenResourcesReply, info *randr.GetOutputInfoReply, width, height int) randr.Mode {
	for _, mode := range info.Modes {
		mi := modeInfo(resources, mode)
		if mi != nil && int(mi.Width) == width && int(mi.Height) == height {
			return mode
		}
	}
	return 0
}

// pickAvailableCrtc finds a CRTC that can drive the output and is not
// in use by any other output.
func (c *Conn) pickAvailableCrtc(resources *randr.GetScreenResourcesReply, output randr.Output) (randr.Crtc, error) {
	for _, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.x, crtc, 0).Reply()
		if err != nil {
			return 0, fmt.Errorf("getting crtc info: %w", err)
		}

		possible := false
		for _, po := range crtcInfo.Possible {
			if po == output {
				possible = true
				break
			}
		}
		if !possible {
			continue
		}

		used := false
		for _, other := range resources.Outputs {
			if other == output {
				continue
			}
			info, err := randr.GetOutputInfo(c.x, other, 0).Reply()
			if err != nil {
				return 0, fmt.Errorf("getting output info: %w", err)
			}
			if info.Crtc == crtc {
				used = true
				break
			}
		}

		if !used {
			return crtc, nil
		}
	}

	return 0, fmt.Errorf("no CRTC available")
}

func (c *Conn) updateScreenSize(display rect) error {
	width := display.right - display.left
	height := display.bottom - display.top
	if uint16(width) == c.screen.WidthInPixels && uint16(height) == c.screen.HeightInPixels {
		return nil
	}

	dpi := (25.4 * float64(c.screen.HeightInPixels)) / float64(c.screen.HeightInMillimeters)
	widthMM := uint32((25.4 * float64(width)) / dpi)
	heightMM := uint32((25.4 * float64(height)) / dpi)

	slog.Info("setting screen size", "size", fmt.Sprintf("%dx%d", width, height))
	if err := randr.SetScreenSizeChecked(c.x, c.root(), uint16(width), uint16(height), widthMM, heightMM).Check(); err != nil {
		return fmt.Errorf("setting screen size: %w", err)
	}

	c.screen.WidthInPixels = uint16(width)
	c.screen.HeightInPixels = uint16(height)
	c.screen.WidthInMillimeters = uint16(widthMM)
	c.screen.HeightInMillimeters = uint16(heightMM)
	return nil
}

type rect struct {
	left, top, right, bottom int
}

func (r *rect) update(x, y, width, height int) {
	if r.left == 0 && r.right == 0 && r.top == 0 && r.bottom == 0 {
		r.left, r.top = x, y
		r.right, r.bottom = x+width, y+height
		return
	}

	if x < r.left {
		r.left = x
	}
	if y < r.top {
		r.top = y
	}
	if x+width > r.right {
		r.right = x + width
	}
	if y+height > r.bottom {
		r.bottom = y + height
	}
}
