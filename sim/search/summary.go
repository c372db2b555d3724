package search

import "github.com/nlo-design/modsim/sim"

// Summary aggregates statistics from a search Result.
type Summary struct {
	Trials        int
	Evaluated     int
	Rejected      int
	FlatResponses int
	BestScore     float64
	MeanScore     float64 // over evaluated trials
	ByMaterial    map[sim.MaterialID]int
}

// Summarize computes aggregate statistics from res.
// Safe for empty results (returns zero-value fields).
func Summarize(res Result) Summary {
	s := Summary{
		Trials:     len(res.Trials),
		ByMaterial: make(map[sim.MaterialID]int),
	}
	total := 0.0
	for _, t := range res.Trials {
		s.ByMaterial[t.Params.Material]++
		if t.Err != nil {
			s.Rejected++
			continue
		}
		s.Evaluated++
		total += t.Score
		if t.KPIs.Contrast == 0 {
			s.FlatResponses++
		}
	}
	if s.Evaluated > 0 {
		s.MeanScore = total / float64(s.Evaluated)
		s.BestScore = res.Best.Score
	}
	return s
}
