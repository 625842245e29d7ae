package compare

import "github.com/WessleyAI/car-explorer/engine/catalog"

// View is everything a comparison screen renders.
type View struct {
	Cars       []catalog.Car `json:"cars"`
	Specs      SpecGroups    `json:"specs"`
	Highlights Highlights    `json:"highlights"`
}

// Build assembles the comparison of cars. It returns nil when there is
// nothing to compare.
func Build(cars []catalog.Car) *View {
	if len(cars) == 0 {
		return nil
	}
	return &View{
		Cars:       append([]catalog.Car(nil), cars...),
		Specs:      Specs(),
		Highlights: HighlightsFor(cars),
	}
}

// Cell is one formatted table value.
type Cell struct {
	Value string `json:"value"`
	Best  bool   `json:"best,omitempty"`
}

// Row is a formatted table row with one cell per car.
type Row struct {
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

// Table is a formatted section of the comparison table.
type Table struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Tables renders the view as formatted sections. Cells of compared rows are
// marked Best when the car holds that row's winning value.
func (v *View) Tables() []Table {
	if v == nil {
		return []Table{}
	}
	sections := v.Specs.Sections()
	out := make([]Table, 0, len(sections))
	for _, s := range sections {
		t := Table{Title: s.Title, Rows: make([]Row, 0, len(s.Rows))}
		for _, spec := range s.Rows {
			row := Row{Label: spec.Label, Cells: make([]Cell, len(v.Cars))}
			for i, c := range v.Cars {
				row.Cells[i] = Cell{
					Value: FormatValue(c.Value(spec.Key), spec.Format),
					Best:  spec.Compare != catalog.Neutral && IsHighlighted(v.Highlights, spec.Key, c.ID),
				}
			}
			t.Rows = append(t.Rows, row)
		}
		out = append(out, t)
	}
	return out
}
