package compare

import "github.com/WessleyAI/car-explorer/engine/catalog"

// Report bundles every rendering of a comparison: the raw view, the ranking,
// the summary sentence and the formatted tables. View is nil when there are
// no cars.
type Report struct {
	View    *View   `json:"view"`
	Ranking Ranking `json:"ranking"`
	Summary string  `json:"summary"`
	Tables  []Table `json:"tables"`
}

func NewReport(cars []catalog.Car) Report {
	view := Build(cars)
	return Report{
		View:    view,
		Ranking: OverallWinner(cars),
		Summary: Summary(cars),
		Tables:  view.Tables(),
	}
}
