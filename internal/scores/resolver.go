package scores

const (
	// denseLimit is the largest df with a row for every integer below it.
	denseLimit = 30
	// maxFiniteDF is the largest df resolved to a finite row.
	maxFiniteDF = 150
)

// sparseKeys are the rows between denseLimit and NormalDF.
var sparseKeys = []int{35, 40, 50, 60, 120}

// ResolveLookupDF maps a logical df onto a table row. Population tests and
// df above 150 use the normal row; df in 1..30 map to themselves; anything
// between rounds down to the nearest tabulated key, so 31..34 use 30.
// df below 1 is returned unchanged and has no row.
func ResolveLookupDF(df int, isPopulation bool) int {
	if isPopulation || df > maxFiniteDF {
		return NormalDF
	}
	if df <= denseLimit {
		return df
	}
	lookup := denseLimit
	for _, k := range sparseKeys {
		if k > df {
			break
		}
		lookup = k
	}
	return lookup
}
