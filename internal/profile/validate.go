package profile

import (
	"fmt"
	"regexp"
)

// Validate checks the full profile list and returns every violation
// found, not just the first, so a user can fix their config in one pass.
// An empty slice means the profiles are valid.
func Validate(profiles []Profile) []string {
	var violations []string

	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if p.Name == "" {
			violations = append(violations, "profile with empty name")
			continue
		}

		if seen[p.Name] {
			violations = append(violations, fmt.Sprintf("duplicate profile name: %q", p.Name))
			continue
		}
		seen[p.Name] = true

		violations = append(violations, validateProfile(p)...)
	}

	return violations
}

func validateProfile(p Profile) []string {
	var violations []string

	if len(p.Placements) == 0 {
		if p.Name != DefaultName {
			violations = append(violations,
				fmt.Sprintf("profile %q: no placements (only the %q profile may be empty)", p.Name, DefaultName))
		}
		return violations
	}

	outputs := make(map[string]bool, len(p.Placements))
	primaries := 0
	for _, pl := range p.Placements {
		if pl.Output == "" {
			violations = append(violations, fmt.Sprintf("profile %q: placement with empty output name", p.Name))
			continue
		}

		if outputs[pl.Output] {
			violations = append(violations,
				fmt.Sprintf("profile %q: output %q placed more than once", p.Name, pl.Output))
		}
		outputs[pl.Output] = true

		if pl.Enabled() && (pl.Width <= 0 || pl.Height <= 0) {
			violations = append(violations,
				fmt.Sprintf("profile %q: output %q has invalid resolution %dx%d", p.Name, pl.Output, pl.Width, pl.Height))
		}

		if pl.Primary {
			primaries++
			if !pl.Enabled() {
				violations = append(violations,
					fmt.Sprintf("profile %q: primary output %q is disabled", p.Name, pl.Output))
			}
		}
	}

	if primaries != 1 {
		violations = append(violations,
			fmt.Sprintf("profile %q: exactly one primary placement required, got %d", p.Name, primaries))
	}

	for _, expr := range p.AudioSinks {
		if _, err := regexp.Compile(expr); err != nil {
			violations = append(violations,
				fmt.Sprintf("profile %q: invalid audio sink pattern %q: %v", p.Name, expr, err))
		}
	}

	return violations
}
