// Package profiles provides the built-in check profiles. A profile is the
// first policy layer: it seeds the ordered check list and the strict and
// secret-scan defaults.
package profiles

import (
	"fmt"
)

// Default is the profile used when neither the command line nor the config
// file names one.
const Default = "full"

// Profile is a named default bundle of checks.
type Profile struct {
	// Name is the profile identifier (quick, full, ci)
	Name string `yaml:"-" json:"name"`

	Description string `yaml:"description" json:"description"`

	// Strict promotes warnings to a failing exit status
	Strict bool `yaml:"strict" json:"strict"`

	// SecretScan enables the external secret scanner
	SecretScan bool `yaml:"secret_scan" json:"secret_scan"`

	// Checks is the ordered list of check ids the profile runs
	Checks []string `yaml:"checks" json:"checks"`
}

// ProfileCollection is the on-disk shape of a profile catalog file.
type ProfileCollection struct {
	Schema   string             `yaml:"schema"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Validate checks the profile is usable. Check ids are validated against the
// registry by the policy resolver.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if len(p.Checks) == 0 {
		return fmt.Errorf("profile %q lists no checks", p.Name)
	}

	seen := make(map[string]bool, len(p.Checks))
	for _, id := range p.Checks {
		if id == "" {
			return fmt.Errorf("profile %q has an empty check id", p.Name)
		}
		if seen[id] {
			return fmt.Errorf("profile %q lists %q twice", p.Name, id)
		}
		seen[id] = true
	}
	return nil
}

// CheckIDs returns a copy of the profile's check list.
func (p *Profile) CheckIDs() []string {
	out := make([]string, len(p.Checks))
	copy(out, p.Checks)
	return out
}
