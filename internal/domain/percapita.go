package domain

// Per-capita scale factors.
const (
	Per1k  = 1_000
	Per10k = 10_000
)

// PopulationIndex looks up population by series identity.
type PopulationIndex struct {
	records map[SeriesID]PopulationRecord
}

// NewPopulationIndex aggregates records sharing (key, state), summing
// population. This is where the five borough rows become one New York City row.
func NewPopulationIndex(records []PopulationRecord) PopulationIndex {
	idx := PopulationIndex{records: make(map[SeriesID]PopulationRecord, len(records))}
	for _, r := range records {
		id := SeriesID{Key: r.Key, State: r.State}
		if acc, ok := idx.records[id]; ok {
			acc.Population += r.Population
			if acc.Region == "" {
				acc.Region = r.Region
			}
			idx.records[id] = acc
			continue
		}
		idx.records[id] = r
	}
	return idx
}

// Lookup returns the aggregated record for id.
func (p PopulationIndex) Lookup(id SeriesID) (PopulationRecord, bool) {
	r, ok := p.records[id]
	return r, ok
}

// Len is the number of distinct (key, state) pairs.
func (p PopulationIndex) Len() int { return len(p.records) }

// JoinPopulation attaches population and per-capita rates to each series.
// Series with no population match, or a population that is not positive, are
// dropped and recorded as a JoinMissError.
func JoinPopulation(series []CountySeries, pop PopulationIndex, diag *Diagnostics) []PerCapitaSeries {
	out := make([]PerCapitaSeries, 0, len(series))
	for _, s := range series {
		rec, ok := pop.Lookup(s.ID)
		if !ok || rec.Population <= 0 {
			diag.addJoinMiss(JoinMissError{Key: s.ID.Key, State: s.ID.State, Rows: len(s.Rows)})
			continue
		}

		label := CountyLabel(s.Display, rec.State)
		rows := make([]PerCapitaRow, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = perCapita(r, label, rec.Population)
		}
		out = append(out, PerCapitaSeries{
			ID:         s.ID,
			Label:      label,
			Population: rec.Population,
			Region:     rec.Region,
			Rows:       rows,
		})
	}
	return out
}

func perCapita(r DerivedMetricRow, label string, population int64) PerCapitaRow {
	pop := float64(population)
	rate := func(count int64, scale float64) Metric {
		return Some(float64(count) / pop * scale)
	}
	per1k := func(m Metric) Metric {
		return m.Scale(Per1k / pop)
	}

	return PerCapitaRow{
		DerivedMetricRow: r,
		Label:            label,
		Population:       population,

		CasesPer1k:     rate(r.Cases, Per1k),
		CasesPer10k:    rate(r.Cases, Per10k),
		NewCasesPer1k:  rate(r.NewCases, Per1k),
		DeathsPer1k:    rate(r.Deaths, Per1k),
		NewDeathsPer1k: rate(r.NewDeaths, Per1k),

		NewCasesPer1kMA5:   per1k(r.NewCasesMA5),
		NewDeathsPer1kMA5:  per1k(r.NewDeathsMA5),
		NewCasesPer1kSum7:  per1k(r.NewCasesSum7),
		NewCasesPer1kSum14: per1k(r.NewCasesSum14),
	}
}
