package domain

import "log/slog"

// Diagnostics collects the non-fatal findings of one run. Methods are safe to
// call on a nil receiver, which discards everything.
type Diagnostics struct {
	JoinMisses    []JoinMissError          `json:"join_misses"`
	UnmappedNames []UnmappedNameWarning    `json:"unmapped_names"`
	HistoryGaps   []InsufficientHistoryGap `json:"history_gaps"`

	// UnknownStates counts hospital rows whose state abbreviation had no
	// full-name mapping.
	UnknownStates int `json:"unknown_states"`

	unmappedSeen map[UnmappedNameWarning]bool
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{unmappedSeen: make(map[UnmappedNameWarning]bool)}
}

func (d *Diagnostics) addJoinMiss(e JoinMissError) {
	if d == nil {
		return
	}
	d.JoinMisses = append(d.JoinMisses, e)
}

// addUnmapped records each distinct (source, name, state) once.
func (d *Diagnostics) addUnmapped(w UnmappedNameWarning) {
	if d == nil {
		return
	}
	if d.unmappedSeen == nil {
		d.unmappedSeen = make(map[UnmappedNameWarning]bool)
	}
	if d.unmappedSeen[w] {
		return
	}
	d.unmappedSeen[w] = true
	d.UnmappedNames = append(d.UnmappedNames, w)
}

func (d *Diagnostics) addHistoryGap(g InsufficientHistoryGap) {
	if d == nil {
		return
	}
	d.HistoryGaps = append(d.HistoryGaps, g)
}

func (d *Diagnostics) addUnknownState() {
	if d == nil {
		return
	}
	d.UnknownStates++
}

// DroppedRows is the number of case rows lost to join misses.
func (d *Diagnostics) DroppedRows() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, m := range d.JoinMisses {
		n += m.Rows
	}
	return n
}

// Log writes one summary record plus one debug record per finding.
func (d *Diagnostics) Log(logger *slog.Logger) {
	if d == nil {
		return
	}
	logger.Info("run diagnostics",
		"join_misses", len(d.JoinMisses),
		"dropped_rows", d.DroppedRows(),
		"unmapped_names", len(d.UnmappedNames),
		"history_gaps", len(d.HistoryGaps),
		"unknown_states", d.UnknownStates,
	)
	for _, m := range d.JoinMisses {
		logger.Debug("join miss", "county_key", m.Key, "state", m.State, "rows", m.Rows)
	}
	for _, w := range d.UnmappedNames {
		logger.Warn("unmapped county name", "source", w.Source, "name", w.Name, "state", w.State)
	}
	for _, g := range d.HistoryGaps {
		logger.Debug("insufficient history", "county_key", g.Key, "state", g.State,
			"observations", g.Observations, "required", g.Required)
	}
}
