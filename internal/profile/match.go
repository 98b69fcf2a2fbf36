package profile

// Match selects the profile to apply for the given set of connected
// outputs. Profiles are checked in config order and the first whose
// required outputs exactly equal the connected set wins; an extra
// unexpected monitor therefore never half-matches a smaller profile.
// If nothing matches, the default profile is selected when present.
// The second return is false when no profile applies at all, in which
// case the caller must leave the current configuration untouched.
func Match(connected []string, profiles []Profile) (Profile, bool) {
	var (
		def    Profile
		hasDef bool
	)

	for _, p := range profiles {
		if p.IsDefault() {
			if !hasDef {
				def = p
				hasDef = true
			}
			continue
		}

		if setEqual(p.RequiredOutputs(), connected) {
			return p, true
		}
	}

	if hasDef {
		return def, true
	}

	return Profile{}, false
}

// NextApplicable returns the first profile after the named one (wrapping
// around, excluding it) whose required outputs are all connected. Used
// for manual profile cycling; unlike Match it tolerates extra connected
// outputs, since the user asked for the switch explicitly.
func NextApplicable(current string, connected []string, profiles []Profile) (Profile, bool) {
	ordered := profiles
	for i, p := range profiles {
		if p.Name == current {
			ordered = append(append([]Profile{}, profiles[i+1:]...), profiles[:i]...)
			break
		}
	}

	have := make(map[string]struct{}, len(connected))
	for _, o := range connected {
		have[o] = struct{}{}
	}

	for _, p := range ordered {
		if p.IsDefault() {
			continue
		}

		ok := true
		for o := range p.RequiredOutputs() {
			if _, connected := have[o]; !connected {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}

	return Profile{}, false
}

func setEqual(req map[string]struct{}, connected []string) bool {
	if len(req) != len(connected) {
		return false
	}
	for _, o := range connected {
		if _, ok := req[o]; !ok {
			return false
		}
	}
	return true
}
