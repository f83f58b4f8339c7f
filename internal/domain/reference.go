package domain

import (
	"errors"
	"maps"
	"strings"
)

// Reference holds the read-only lookup tables for one run: postal abbreviation
// to state name, and state name to census division.
type Reference struct {
	stateNames map[string]string
	regions    map[string]string
	divisions  map[string][]string
}

// NewReference builds a Reference from abbreviation → state name and
// division → member states. The division map is inverted for lookup.
func NewReference(stateNames map[string]string, divisions map[string][]string) (Reference, error) {
	if len(stateNames) == 0 {
		return Reference{}, errors.New("reference: no state abbreviations")
	}
	if len(divisions) == 0 {
		return Reference{}, errors.New("reference: no regions")
	}

	ref := Reference{
		stateNames: make(map[string]string, len(stateNames)),
		regions:    make(map[string]string),
		divisions:  make(map[string][]string, len(divisions)),
	}
	for abbrev, name := range stateNames {
		ref.stateNames[strings.ToUpper(strings.TrimSpace(abbrev))] = strings.TrimSpace(name)
	}
	for division, states := range divisions {
		ref.divisions[division] = append([]string(nil), states...)
		for _, state := range states {
			ref.regions[strings.TrimSpace(state)] = division
		}
	}
	return ref, nil
}

// StateName maps a postal abbreviation ("NY") to the full state name.
func (r Reference) StateName(abbrev string) (string, bool) {
	name, ok := r.stateNames[strings.ToUpper(strings.TrimSpace(abbrev))]
	return name, ok
}

// Region maps a full state name to its census division.
func (r Reference) Region(state string) (string, bool) {
	region, ok := r.regions[state]
	return region, ok
}

// StateNames returns a copy of the abbreviation table.
func (r Reference) StateNames() map[string]string {
	return maps.Clone(r.stateNames)
}

// Divisions returns a copy of the division table.
func (r Reference) Divisions() map[string][]string {
	out := make(map[string][]string, len(r.divisions))
	for k, v := range r.divisions {
		out[k] = append([]string(nil), v...)
	}
	return out
}
