package ports

import (
	"statbasket/domain/stats"
)

// CriticalScorer maps a logical df to a tabulated critical score.
type CriticalScorer interface {
	// LookupDF returns the table row used for df. The normal row selects z.
	LookupDF(df int, isPopulation bool) int
	CriticalScore(df int, cl stats.ConfidenceLevel, tail stats.Tail, isPopulation bool) (stats.CriticalScore, error)
}
