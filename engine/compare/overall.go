package compare

import (
	"slices"

	"github.com/WessleyAI/car-explorer/engine/catalog"
)

// Score is one car's tally of performance wins.
type Score struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
	Wins  []string `json:"wins"`
}

// Ranking orders cars by score. Winner is nil when there are no cars.
type Ranking struct {
	Winner *Score  `json:"winner"`
	All    []Score `json:"all"`
}

var performance = []struct {
	field catalog.Field
	label string
}{
	{catalog.FieldHorsepower, "Horsepower"},
	{catalog.FieldAcceleration, "Acceleration"},
	{catalog.FieldTopSpeed, "Top Speed"},
}

// OverallWinner scores each car one point per performance metric it wins or
// ties and ranks by score, keeping input order between equal scores.
func OverallWinner(cars []catalog.Car) Ranking {
	if len(cars) == 0 {
		return Ranking{All: []Score{}}
	}
	scores := make([]Score, len(cars))
	for i, c := range cars {
		scores[i] = Score{ID: c.ID, Name: c.Name, Wins: []string{}}
	}
	for _, p := range performance {
		winners := Winner(cars, p.field, p.field.Polarity())
		for i := range scores {
			if slices.Contains(winners, scores[i].ID) {
				scores[i].Score++
				scores[i].Wins = append(scores[i].Wins, p.label)
			}
		}
	}
	slices.SortStableFunc(scores, func(a, b Score) int { return b.Score - a.Score })
	return Ranking{Winner: &scores[0], All: scores}
}
