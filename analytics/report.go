package analytics

import (
	"time"

	"github.com/musclegram/musclegram/models"
)

type Report struct {
	Volume   []ExerciseVolume `json:"volume"`
	Progress []Progress       `json:"progress"`
	Balance  map[string]int   `json:"balance"`
	Goal     *GoalProgress    `json:"goal,omitempty"`
	Streak   int              `json:"streak"`
}

type ReportParams struct {
	Catalog map[string][]string
	Month   time.Time
	// Target is the monthly days goal. Zero leaves Goal unset.
	Target   int
	Now      time.Time
	Location *time.Location
}

// BuildReport runs every analysis over posts. Progress is reported for each
// exercise in Volume order.
func BuildReport(posts []models.Post, params ReportParams) Report {
	r := Report{
		Volume:  Volume(posts),
		Balance: BodyPartBalance(posts, params.Catalog),
		Streak:  Streak(posts, params.Now, params.Location),
	}

	r.Progress = make([]Progress, 0, len(r.Volume))
	for _, v := range r.Volume {
		r.Progress = append(r.Progress, StrengthProgress(posts, v.Exercise, params.Location))
	}

	if params.Target > 0 {
		gp := MonthlyGoal(posts, params.Month, params.Target, params.Location)
		r.Goal = &gp
	}
	return r
}
