// Package profile holds the output profile data model and the matcher
// that resolves a live output topology against the configured profiles.
package profile

// DefaultName is the reserved name of the fallback profile. The default
// profile requires no outputs and matches only when nothing else does.
const DefaultName = "default"

type (
	// Profile is a named, static desired layout for a specific set of
	// connected outputs. The set of outputs it requires is exactly the
	// set referenced by its placements.
	Profile struct {
		Name       string      `yaml:"name"`
		Placements []Placement `yaml:"placements"`

		// AudioSinks holds regexes tried in order against available
		// PulseAudio sink names after the profile is applied.
		AudioSinks []string `yaml:"audio_sinks,omitempty"`
	}

	// Placement describes the desired state of one output within a profile.
	Placement struct {
		Output   string `yaml:"output"`
		Width    int    `yaml:"width"`
		Height   int    `yaml:"height"`
		X        int    `yaml:"x"`
		Y        int    `yaml:"y"`
		Primary  bool   `yaml:"primary,omitempty"`
		Disabled bool   `yaml:"disabled,omitempty"`
	}
)

func (p Placement) Enabled() bool {
	return !p.Disabled
}

// RequiredOutputs returns the set of outputs referenced by the profile's
// placements. All of them must be connected for the profile to match,
// including placements that are declared but disabled.
func (p Profile) RequiredOutputs() map[string]struct{} {
	req := make(map[string]struct{}, len(p.Placements))
	for _, pl := range p.Placements {
		req[pl.Output] = struct{}{}
	}
	return req
}

// PrimaryOutput returns the output flagged as primary, or "" if the
// profile has no placements (the default profile).
func (p Profile) PrimaryOutput() string {
	for _, pl := range p.Placements {
		if pl.Primary {
			return pl.Output
		}
	}
	return ""
}

// IsDefault reports whether this is the reserved fallback profile.
func (p Profile) IsDefault() bool {
	return p.Name == DefaultName && len(p.Placements) == 0
}

// Placement returns the placement for the named output, if declared.
func (p Profile) Placement(output string) (Placement, bool) {
	for _, pl := range p.Placements {
		if pl.Output == output {
			return pl, true
		}
	}
	return Placement{}, false
}
