package ports

import "statbasket/domain/stats"

// SampleReader loads numeric samples from a tabular source by column name.
type SampleReader interface {
	// Column returns the non-blank values of one column in row order.
	Column(name string) (stats.Sample, error)
	// PairedColumns returns two columns aligned row by row.
	PairedColumns(nameX, nameY string) (stats.Sample, stats.Sample, error)
}
