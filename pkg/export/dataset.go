package export

// Dataset defines tabular export content. When Sections is non-empty the
// rows are rendered grouped under each section title and Rows is ignored.
type Dataset struct {
	Title         string
	SectionHeader string
	Headers       []string
	Rows          []map[string]string
	Sections      []Section
}

// Section is a titled run of rows, e.g. one calendar day.
type Section struct {
	Title string
	Rows  []map[string]string
}

func (d Dataset) sections() []Section {
	if len(d.Sections) > 0 {
		return d.Sections
	}
	return []Section{{Rows: d.Rows}}
}

// RowCount returns the number of data rows across all sections.
func (d Dataset) RowCount() int {
	total := 0
	for _, s := range d.sections() {
		total += len(s.Rows)
	}
	return total
}
