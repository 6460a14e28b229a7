package config

import "testing"

func temp(c int16) *int16 { return &c }

func TestValidateProfileDryRequiresTemperature(t *testing.T) {
	p := Profile{Label: "dry1", Kind: Dry, RPM: 50, DurationS: 600, Direction: Clockwise}
	if err := ValidateProfile(p); err != ErrMissingTemperature {
		t.Fatalf("got %v, want ErrMissingTemperature", err)
	}
}

func TestValidateProfileNonDryForbidsTemperature(t *testing.T) {
	p := Profile{Label: "c1", Kind: Clean, RPM: 50, DurationS: 600, Direction: Clockwise, TemperatureC: temp(40)}
	if err := ValidateProfile(p); err != ErrUnexpectedTemperature {
		t.Fatalf("got %v, want ErrUnexpectedTemperature", err)
	}
}

func TestValidateProfileAlternateDivisibility(t *testing.T) {
	// 180s / (2*3) = 30s, divides evenly and clears MIN_SEGMENT_TIME.
	ok := Profile{Label: "clean", Kind: Clean, RPM: 120, DurationS: 180, Direction: Alternate, Iterations: 3}
	if err := ValidateProfile(ok); err != nil {
		t.Fatalf("expected valid profile, got %v", err)
	}

	// iterations=1, time_s/2 < 10 -> rejected per the boundary behavior.
	tooShort := Profile{Label: "short", Kind: Clean, RPM: 120, DurationS: 18, Direction: Alternate, Iterations: 1}
	if err := ValidateProfile(tooShort); err != ErrIndivisibleSegments {
		t.Fatalf("got %v, want ErrIndivisibleSegments", err)
	}

	// Indivisible: 100s / (2*3)=6 segments -> 16.67s, rejected outright.
	indivisible := Profile{Label: "odd", Kind: Clean, RPM: 120, DurationS: 100, Direction: Alternate, Iterations: 3}
	if err := ValidateProfile(indivisible); err != ErrIndivisibleSegments {
		t.Fatalf("got %v, want ErrIndivisibleSegments", err)
	}
}

func TestValidateProfileRPMRange(t *testing.T) {
	p := Profile{Label: "fast", Kind: Clean, RPM: 300, DurationS: 60, Direction: Clockwise}
	if err := ValidateProfile(p); err != ErrRPMOutOfRange {
		t.Fatalf("got %v, want ErrRPMOutOfRange", err)
	}
}

func TestValidateProfilesCap(t *testing.T) {
	profiles := make([]Profile, 0, MaxProfiles+1)
	for i := 0; i < MaxProfiles+1; i++ {
		profiles = append(profiles, Profile{Label: "p", Kind: Clean, RPM: 10, DurationS: 60, Direction: Clockwise})
	}
	if err := ValidateProfiles(profiles); err != ErrTooManyProfiles {
		t.Fatalf("got %v, want ErrTooManyProfiles", err)
	}
}

func TestValidateProgramUnknownReferences(t *testing.T) {
	profiles := map[string]Profile{
		"clean": {Label: "clean", Kind: Clean, RPM: 120, DurationS: 60, Direction: Clockwise},
	}
	jars := map[string]JarConfig{"jar1": {Name: "jar1"}}

	prog := Program{Label: "p", Steps: []ProgramStep{{Jar: "jar1", Profile: "missing"}}}
	if err := ValidateProgram(prog, profiles, jars); err != ErrUnknownProfile {
		t.Fatalf("got %v, want ErrUnknownProfile", err)
	}

	prog2 := Program{Label: "p", Steps: []ProgramStep{{Jar: "missing", Profile: "clean"}}}
	if err := ValidateProgram(prog2, profiles, jars); err != ErrUnknownJar {
		t.Fatalf("got %v, want ErrUnknownJar", err)
	}
}
