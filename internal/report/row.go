package report

// Cell is one named value of a Row. Value is nil, string, int64 or float64;
// WriteCSV rejects anything else.
type Cell struct {
	Name  string
	Value any
}

// Row is an ordered record. All rows of one file share the same names in
// the same order.
type Row []Cell

// Names returns the cell names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Get returns the value of the named cell.
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}
