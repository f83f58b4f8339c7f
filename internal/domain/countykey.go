package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Source names the feed a county name came from.
type Source string

const (
	SourceCases     Source = "cases"
	SourceCensus    Source = "census"
	SourceHospitals Source = "hospitals"
)

// Rule names one step of the normalization decision sequence.
type Rule string

const (
	RuleDistrict        Rule = "district"
	RuleQualifier       Rule = "qualifier"
	RuleNewYorkCity     Rule = "new_york_city"
	RuleIndependentCity Rule = "independent_city"
)

const (
	newYorkState = "new york"
	nycKey       = "new york city"
	districtKey  = "district of columbia"
)

// NewYorkCityKey is the single key shared by the five boroughs.
const NewYorkCityKey CountyKey = nycKey

// nycBoroughs are the county names assigned to New York City in New York state.
var nycBoroughs = map[string]bool{
	"new york": true,
	"kings":    true,
	"queens":   true,
	"bronx":    true,
	"richmond": true,
	nycKey:     true,
}

// keyRule is one step of the decision sequence. apply reports whether the rule
// matched and the rewritten name. Terminal rules end the sequence on a match.
type keyRule struct {
	rule     Rule
	apply    func(name, state string) (string, bool)
	terminal bool
}

// keyRules is evaluated in order on a lowercased, trimmed name.
var keyRules = []keyRule{
	{rule: RuleDistrict, apply: districtRule, terminal: true},
	{rule: RuleQualifier, apply: qualifierRule},
	{rule: RuleNewYorkCity, apply: newYorkCityRule, terminal: true},
	{rule: RuleIndependentCity, apply: independentCityRule, terminal: true},
}

func districtRule(name, _ string) (string, bool) {
	return districtKey, name == districtKey
}

// qualifierRule strips a parenthesized borough qualifier and a trailing
// " county" or " parish".
func qualifierRule(name, _ string) (string, bool) {
	out := name
	if i := strings.Index(out, "("); i > 0 && strings.HasSuffix(out, ")") {
		out = strings.TrimSpace(out[:i])
	}
	for _, suffix := range []string{" county", " parish"} {
		if trimmed, ok := strings.CutSuffix(out, suffix); ok && trimmed != "" {
			out = strings.TrimSpace(trimmed)
			break
		}
	}
	return out, out != name
}

func newYorkCityRule(name, state string) (string, bool) {
	if strings.ToLower(strings.TrimSpace(state)) != newYorkState {
		return name, false
	}
	return nycKey, nycBoroughs[name]
}

// independentCityRule merges "X city" into county "X". "new york city" is never
// stripped, whatever the state.
func independentCityRule(name, _ string) (string, bool) {
	if name == nycKey {
		return name, false
	}
	trimmed, ok := strings.CutSuffix(name, " city")
	if !ok || strings.TrimSpace(trimmed) == "" {
		return name, false
	}
	return strings.TrimSpace(trimmed), true
}

// Normalization is the outcome of normalizing one raw name.
type Normalization struct {
	Key   CountyKey
	Rules []Rule
}

// Unmapped reports whether no rule matched and the name passed through as-is.
func (n Normalization) Unmapped() bool { return len(n.Rules) == 0 }

// Normalizer maps raw county names from any source to a CountyKey.
type Normalizer struct {
	diag *Diagnostics
}

// NewNormalizer creates a Normalizer that records unmapped census names in diag.
// diag may be nil.
func NewNormalizer(diag *Diagnostics) Normalizer {
	return Normalizer{diag: diag}
}

// Normalize runs the decision sequence for name in state. Census names are
// expected to carry a county qualifier, so a census name that matches no rule
// is reported as an UnmappedNameWarning. Clean names from the case and
// hospital feeds pass through silently.
func (n Normalizer) Normalize(source Source, name, state string) Normalization {
	result := NormalizeName(name, state)
	if result.Unmapped() && source == SourceCensus {
		n.diag.addUnmapped(UnmappedNameWarning{Source: source, Name: name, State: state})
	}
	return result
}

// Key is shorthand for Normalize(...).Key.
func (n Normalizer) Key(source Source, name, state string) CountyKey {
	return n.Normalize(source, name, state).Key
}

// NormalizeName applies the decision sequence without any diagnostics. The
// sequence is repeated until the key stops changing, so a suffix strip that
// exposes a borough name still lands on the New York City key.
func NormalizeName(name, state string) Normalization {
	current := strings.ToLower(strings.TrimSpace(name))
	next, applied := applyKeyRules(current, state)
	for next != current {
		current = next
		var more []Rule
		next, more = applyKeyRules(current, state)
		if next != current {
			applied = append(applied, more...)
		}
	}
	return Normalization{Key: CountyKey(current), Rules: applied}
}

func applyKeyRules(name, state string) (string, []Rule) {
	var applied []Rule
	for _, r := range keyRules {
		out, ok := r.apply(name, state)
		if !ok {
			continue
		}
		applied = append(applied, r.rule)
		name = out
		if r.terminal {
			break
		}
	}
	return name, applied
}

// DisplayName renders a key for presentation, e.g. "st. louis" → "St. Louis".
func DisplayName(key CountyKey) string {
	return cases.Title(language.English).String(string(key))
}

// CountyLabel formats the "County, State" label used for grouping.
func CountyLabel(county, state string) string {
	return county + ", " + state
}
