// Package pactl routes the default PulseAudio sink when a profile
// declares sink preferences, e.g. switching to HDMI audio along with an
// external-monitor profile.
package pactl

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

const binaryName = "pactl"

type Client struct {
	binaryPath string
}

// NewClient locates pactl. An error here just disables audio routing;
// the caller decides how loudly to complain.
func NewClient() (*Client, error) {
	bp, err := exec.LookPath(binaryName)
	if err != nil {
		return nil, fmt.Errorf("finding pactl binary path: %w", err)
	}

	return &Client{binaryPath: bp}, nil
}

// Sinks returns the available sink names in pactl's order.
func (c *Client) Sinks() ([]string, error) {
	out, err := c.runCommand("list", "short", "sinks")
	if err != nil {
		return nil, err
	}

	var sinks []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			sinks = append(sinks, fields[1])
		}
	}

	return sinks, nil
}

func (c *Client) DefaultSink() (string, error) {
	out, err := c.runCommand("get-default-sink")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *Client) SetDefaultSink(name string) error {
	_, err := c.runCommand("set-default-sink", name)
	return err
}

func (c *Client) runCommand(args ...string) ([]byte, error) {
	cmd := exec.Command(c.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("running pactl: %s", msg)
		}
		return nil, fmt.Errorf("running pactl: %w", err)
	}

	return stdout.Bytes(), nil
}

// PickSink returns the first sink matched by the patterns, trying each
// pattern in order against every sink before moving to the next. The
// pattern order expresses the user's preference.
func PickSink(sinks, patterns []string) (string, bool) {
	for _, expr := range patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			continue
		}

		for _, sink := range sinks {
			if re.MatchString(sink) {
				return sink, true
			}
		}
	}

	return "", false
}

// NextSink returns the sink after current, wrapping around. If current
// is not in the list the first sink is returned.
func NextSink(sinks []string, current string) (string, error) {
	if len(sinks) == 0 {
		return "", errors.New("no sinks available")
	}

	for i, sink := range sinks {
		if sink == current {
			return sinks[(i+1)%len(sinks)], nil
		}
	}

	return sinks[0], nil
}
