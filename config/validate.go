package config

import "errors"

var (
	ErrLabelTooLong          = errors.New("config: label exceeds max length")
	ErrLabelEmpty            = errors.New("config: label must not be empty")
	ErrRPMOutOfRange         = errors.New("config: rpm out of range")
	ErrDurationOutOfRange    = errors.New("config: duration_s out of range")
	ErrMissingTemperature    = errors.New("config: dry profile requires temperature_c")
	ErrUnexpectedTemperature = errors.New("config: temperature_c only valid for dry profiles")
	ErrTemperatureOutOfRange = errors.New("config: temperature_c out of range")
	ErrMissingIterations     = errors.New("config: alternate direction requires iterations >= 1")
	ErrIndivisibleSegments   = errors.New("config: time_s does not divide evenly into segments of at least MIN_SEGMENT_TIME")
	ErrTooManyProfiles       = errors.New("config: too many profiles")
	ErrTooManySteps          = errors.New("config: too many steps in program")
	ErrRuntimeTooLong        = errors.New("config: total profile runtime exceeds 90 minutes")
	ErrInvalidSpinoff        = errors.New("config: spinoff fields out of range")
	ErrUnknownProfile        = errors.New("config: program references unknown profile")
	ErrUnknownJar            = errors.New("config: program references unknown jar")
)

// ValidateProfile checks one Profile against the invariants: label
// length/uniqueness (uniqueness is checked by ValidateProfiles across the
// whole set), rpm/duration bounds, the dry<->temperature_c coupling, and
// the alternate-direction divisibility rule resolved in the design's open
// question (b): indivisible profiles are rejected outright, not rounded.
func ValidateProfile(p Profile) error {
	if p.Label == "" {
		return ErrLabelEmpty
	}
	if len(p.Label) > MaxLabelLen {
		return ErrLabelTooLong
	}
	if p.RPM > MaxRPM {
		return ErrRPMOutOfRange
	}
	if p.DurationS < 1 || p.DurationS > MaxProfileRuntimeS {
		return ErrDurationOutOfRange
	}

	if p.Kind == Dry {
		if p.TemperatureC == nil {
			return ErrMissingTemperature
		}
	} else if p.TemperatureC != nil {
		return ErrUnexpectedTemperature
	}
	if p.TemperatureC != nil {
		t := *p.TemperatureC
		if t < MinTemperatureC || t > MaxTemperatureC {
			return ErrTemperatureOutOfRange
		}
	}

	if p.Direction == Alternate {
		if p.Iterations < 1 {
			return ErrMissingIterations
		}
		segments := uint32(2) * uint32(p.Iterations)
		if p.DurationS%segments != 0 {
			return ErrIndivisibleSegments
		}
		if p.DurationS/segments < MinSegmentTimeS {
			return ErrIndivisibleSegments
		}
	} else if p.DurationS < MinSegmentTimeS {
		return ErrIndivisibleSegments
	}

	if p.Spinoff != nil {
		s := p.Spinoff
		if s.LiftMM < MinSpinoffLiftMM || s.LiftMM > MaxSpinoffLiftMM {
			return ErrInvalidSpinoff
		}
		if s.RPM < MinSpinoffRPM || s.RPM > MaxSpinoffRPM {
			return ErrInvalidSpinoff
		}
		if s.TimeS < MinSpinoffTimeS || s.TimeS > MaxSpinoffTimeS {
			return ErrInvalidSpinoff
		}
	}

	return nil
}

// ValidateProfiles checks an entire profile set: per-profile validity,
// label uniqueness, and the at-most-8 cap.
func ValidateProfiles(profiles []Profile) error {
	if len(profiles) > MaxProfiles {
		return ErrTooManyProfiles
	}
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if err := ValidateProfile(p); err != nil {
			return err
		}
		if seen[p.Label] {
			return ErrLabelTooLong // reuse: duplicate label is also a label-shape violation
		}
		seen[p.Label] = true
	}
	return nil
}

// ValidateProgram checks a Program's step count, and that every step
// references a profile and jar that exist, and that the sum of
// referenced profile durations (including spinoff where configured)
// stays within the 90-minute cap.
func ValidateProgram(prog Program, profiles map[string]Profile, jars map[string]JarConfig) error {
	if len(prog.Steps) > MaxStepsPerProfile {
		return ErrTooManySteps
	}

	var total uint32
	for _, step := range prog.Steps {
		p, ok := profiles[step.Profile]
		if !ok {
			return ErrUnknownProfile
		}
		if _, ok := jars[step.Jar]; !ok {
			return ErrUnknownJar
		}
		total += p.DurationS
		if p.Spinoff != nil {
			total += p.Spinoff.TimeS
		}
	}
	if total > MaxProfileRuntimeS {
		return ErrRuntimeTooLong
	}
	return nil
}
