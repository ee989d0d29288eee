package traqula

// ResultSet is the output of one "search" command (spec §4.6 step 6):
// Columns names the returned variables in the order the script listed
// them, RowTypes carries the per-cell TypeId name (so columns that mix
// numeric families still report faithfully row by row), and Limited
// reports whether "limit" truncated the result.
type ResultSet struct {
	Columns  []string
	RowTypes [][]string
	Rows     [][]string
	RowCount int
	Limited  bool
}
