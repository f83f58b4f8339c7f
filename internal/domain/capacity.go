package domain

import "strings"

// Capacity model constants.
const (
	// CovidBedShare is the fraction of acute beds assumed available to COVID patients.
	CovidBedShare = 0.39
	// HospitalizationRate is the fraction of new cases assumed admitted.
	HospitalizationRate = 0.20
	// invalidBeds is the facility feed's sentinel for an unknown bed count.
	invalidBeds = -999
)

// acuteTypes are the facility types counted toward capacity.
var acuteTypes = map[string]bool{
	"GENERAL ACUTE CARE": true,
	"CRITICAL ACCESS":    true,
}

// BedIndex looks up bed capacity by series identity.
type BedIndex struct {
	records map[SeriesID]BedCapacityRecord
}

// Lookup returns the capacity record for id.
func (b BedIndex) Lookup(id SeriesID) (BedCapacityRecord, bool) {
	r, ok := b.records[id]
	return r, ok
}

// Len is the number of counties with capacity.
func (b BedIndex) Len() int { return len(b.records) }

// Records returns all aggregated capacity records in no particular order.
func (b BedIndex) Records() []BedCapacityRecord {
	out := make([]BedCapacityRecord, 0, len(b.records))
	for _, r := range b.records {
		out = append(out, r)
	}
	return out
}

// countsTowardCapacity reports whether a facility has an acute type and a
// usable bed count.
func countsTowardCapacity(f BedFacility) bool {
	if !acuteTypes[strings.ToUpper(strings.TrimSpace(f.Type))] {
		return false
	}
	return f.Beds != invalidBeds && f.Beds >= 0
}

// AggregateBeds filters facilities to acute and critical-access types with a
// valid bed count, resolves state abbreviations to full names, normalizes county
// names, and sums beds per (key, state). Facilities in an unknown state are
// skipped and counted in diag.
func AggregateBeds(facilities []BedFacility, ref Reference, n Normalizer, diag *Diagnostics) BedIndex {
	idx := BedIndex{records: make(map[SeriesID]BedCapacityRecord)}
	for _, f := range facilities {
		if !countsTowardCapacity(f) {
			continue
		}
		state, ok := ref.StateName(f.State)
		if !ok {
			diag.addUnknownState()
			continue
		}
		id := SeriesID{Key: n.Key(SourceHospitals, f.County, state), State: state}
		acc := idx.records[id]
		acc.Key = id.Key
		acc.State = state
		acc.StateAbbrev = strings.ToUpper(strings.TrimSpace(f.State))
		acc.TotalBeds += int64(f.Beds)
		acc.Facilities++
		idx.records[id] = acc
	}
	return idx
}

// EstimateCapacity returns a copy of rows with capacity estimates attached.
// Rows without a bed match keep missing capacity fields.
func EstimateCapacity(rows []SnapshotRow, beds BedIndex) []SnapshotRow {
	out := make([]SnapshotRow, len(rows))
	for i, r := range rows {
		out[i] = r
		rec, ok := beds.Lookup(r.ID())
		if !ok {
			continue
		}
		available := float64(rec.TotalBeds) * CovidBedShare
		occupied := r.NewCasesSum12.Scale(HospitalizationRate)

		out[i].TotalBeds = Some(float64(rec.TotalBeds))
		out[i].AvailableCovidBeds = Some(available)
		out[i].EstimatedOccupiedBeds = occupied
		if occupied.Valid {
			out[i].FreeBedRatio = Ratio(available-occupied.Value, available)
		}
	}
	return out
}
