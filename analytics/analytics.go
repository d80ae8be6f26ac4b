// Package analytics derives training statistics from a user's posts. All
// functions are pure; days are bucketed in the location passed in.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/musclegram/musclegram/models"
)

const dayLayout = "2006-01-02"

// BodyPartOther collects exercises that are not in the catalog.
const BodyPartOther = "other"

type ExerciseVolume struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Volume   float64 `json:"volume"`
}

type ProgressPoint struct {
	Day       string  `json:"day"`
	MaxWeight float64 `json:"maxWeight"`
}

type Progress struct {
	Exercise string          `json:"exercise"`
	Points   []ProgressPoint `json:"points"`
	Delta    float64         `json:"delta"`
}

type GoalProgress struct {
	Month        string `json:"month"`
	TrainingDays int    `json:"trainingDays"`
	Target       int    `json:"target"`
	Percent      int    `json:"percent"`
}

type parsedSet struct {
	weight float64
	reps   int
}

func parseSets(sets []models.Set) []parsedSet {
	out := make([]parsedSet, 0, len(sets))
	for _, s := range sets {
		w, err := strconv.ParseFloat(s.Weight, 64)
		if err != nil {
			continue
		}
		r, err := strconv.Atoi(s.Reps)
		if err != nil {
			continue
		}
		out = append(out, parsedSet{weight: w, reps: r})
	}
	return out
}

func dayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// Volume sums weight times reps per exercise name, largest first.
func Volume(posts []models.Post) []ExerciseVolume {
	byName := make(map[string]*ExerciseVolume)
	for _, p := range posts {
		ex := p.Exercise.Data()
		v, ok := byName[ex.Name]
		if !ok {
			v = &ExerciseVolume{Exercise: ex.Name}
			byName[ex.Name] = v
		}
		for _, s := range parseSets(ex.Sets) {
			v.Sets++
			v.Volume += s.weight * float64(s.reps)
		}
	}

	out := make([]ExerciseVolume, 0, len(byName))
	for _, v := range byName {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Exercise < out[j].Exercise
	})
	return out
}

// StrengthProgress tracks the heaviest set of exercise per day, oldest day
// first. Delta is last minus first.
func StrengthProgress(posts []models.Post, exercise string, loc *time.Location) Progress {
	best := make(map[string]float64)
	for _, p := range posts {
		ex := p.Exercise.Data()
		if ex.Name != exercise {
			continue
		}
		day := dayOf(p.CreatedAt, loc)
		for _, s := range parseSets(ex.Sets) {
			if cur, ok := best[day]; !ok || s.weight > cur {
				best[day] = s.weight
			}
		}
	}

	pr := Progress{Exercise: exercise, Points: make([]ProgressPoint, 0, len(best))}
	for day, w := range best {
		pr.Points = append(pr.Points, ProgressPoint{Day: day, MaxWeight: w})
	}
	sort.Slice(pr.Points, func(i, j int) bool {
		return pr.Points[i].Day < pr.Points[j].Day
	})

	if n := len(pr.Points); n > 1 {
		pr.Delta = pr.Points[n-1].MaxWeight - pr.Points[0].MaxWeight
	}
	return pr
}

// BodyPartBalance counts sets per body part using catalog to map exercise
// names. Every catalog body part is present in the result, even at zero.
func BodyPartBalance(posts []models.Post, catalog map[string][]string) map[string]int {
	parts := make([]string, 0, len(catalog))
	for part := range catalog {
		parts = append(parts, part)
	}
	sort.Strings(parts)

	// a name listed under several parts counts toward the first in
	// sorted order
	partOf := make(map[string]string)
	out := make(map[string]int, len(catalog)+1)
	for _, part := range parts {
		out[part] = 0
		for _, n := range catalog[part] {
			if _, ok := partOf[n]; !ok {
				partOf[n] = part
			}
		}
	}

	for _, p := range posts {
		ex := p.Exercise.Data()
		part, ok := partOf[ex.Name]
		if !ok {
			part = BodyPartOther
		}
		out[part] += len(parseSets(ex.Sets))
	}
	return out
}

// TrainingDays returns the distinct days with at least one post, oldest first.
func TrainingDays(posts []models.Post, loc *time.Location) []string {
	seen := make(map[string]bool)
	var days []string
	for _, p := range posts {
		d := dayOf(p.CreatedAt, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Strings(days)
	return days
}

// MonthlyGoal compares the training days in month against target. Percent is
// capped at 100; a non-positive target yields zero.
func MonthlyGoal(posts []models.Post, month time.Time, target int, loc *time.Location) GoalProgress {
	prefix := month.Format("2006-01")
	gp := GoalProgress{Month: prefix, Target: target}

	for _, d := range TrainingDays(posts, loc) {
		if d[:len(prefix)] == prefix {
			gp.TrainingDays++
		}
	}

	if target > 0 {
		gp.Percent = min(gp.TrainingDays*100/target, 100)
	}
	return gp
}

// Streak counts consecutive training days ending today. A streak that ended
// yesterday still counts, since today may not be logged yet.
func Streak(posts []models.Post, today time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[string]bool)
	for _, d := range TrainingDays(posts, loc) {
		days[d] = true
	}

	cur := today.In(loc)
	if !days[cur.Format(dayLayout)] {
		cur = cur.AddDate(0, 0, -1)
	}

	n := 0
	for days[cur.Format(dayLayout)] {
		n++
		cur = cur.AddDate(0, 0, -1)
	}
	return n
}
