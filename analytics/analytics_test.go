package analytics

import (
	"testing"
	"time"

	"github.com/musclegram/musclegram/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 18, 0, 0, 0, time.UTC)
}

func post(at time.Time, name string, sets ...models.Set) models.Post {
	return models.Post{
		UserID:    "u1",
		Exercise:  datatypes.NewJSONType(models.Exercise{Name: name, Sets: sets}),
		CreatedAt: at,
	}
}

func set(w, r string) models.Set {
	return models.Set{Weight: w, Reps: r}
}

var history = []models.Post{
	post(day(1), "Bench Press", set("60", "10"), set("62.5", "8")),
	post(day(2), "Squat", set("100", "5")),
	post(day(3), "Bench Press", set("65", "5")),
	post(day(3), "Bench Press", set("70", "1")),
	post(day(4), "Zercher Carry", set("40", "1")),
}

func TestVolume(t *testing.T) {
	vols := Volume(history)
	require.Len(t, vols, 3)

	assert.Equal(t, "Bench Press", vols[0].Exercise)
	assert.Equal(t, 4, vols[0].Sets)
	assert.InDelta(t, 600+500+325+70, vols[0].Volume, 1e-9)

	assert.Equal(t, "Squat", vols[1].Exercise)
	assert.InDelta(t, 500, vols[1].Volume, 1e-9)
}

func TestVolumeSkipsUnparseableSets(t *testing.T) {
	vols := Volume([]models.Post{post(day(1), "Row", set("x", "5"), set("50", "2"))})
	require.Len(t, vols, 1)
	assert.Equal(t, 1, vols[0].Sets)
	assert.InDelta(t, 100, vols[0].Volume, 1e-9)
}

func TestStrengthProgress(t *testing.T) {
	pr := StrengthProgress(history, "Bench Press", time.UTC)
	require.Equal(t, []ProgressPoint{
		{Day: "2024-05-01", MaxWeight: 62.5},
		{Day: "2024-05-03", MaxWeight: 70},
	}, pr.Points)
	assert.InDelta(t, 7.5, pr.Delta, 1e-9)

	single := StrengthProgress(history, "Squat", time.UTC)
	assert.Len(t, single.Points, 1)
	assert.Zero(t, single.Delta)

	none := StrengthProgress(history, "Deadlift", nil)
	assert.Empty(t, none.Points)
}

func TestStrengthProgressUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	pr := StrengthProgress(history[:1], "Bench Press", tokyo)
	require.Len(t, pr.Points, 1)
	assert.Equal(t, "2024-05-02", pr.Points[0].Day)
}

func TestBodyPartBalance(t *testing.T) {
	catalog := map[string][]string{
		"chest": {"Bench Press"},
		"legs":  {"Squat"},
		"back":  {"Deadlift"},
	}
	bal := BodyPartBalance(history, catalog)
	assert.Equal(t, map[string]int{
		"chest":       4,
		"legs":        1,
		"back":        0,
		BodyPartOther: 1,
	}, bal)

	catalog["shoulders"] = []string{"Bench Press"}
	catalog["arms"] = []string{"Bench Press"}
	for range 10 {
		bal = BodyPartBalance(history, catalog)
		assert.Equal(t, 4, bal["arms"])
		assert.Equal(t, 0, bal["chest"])
		assert.Equal(t, 0, bal["shoulders"])
	}
}

func TestMonthlyGoal(t *testing.T) {
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	gp := MonthlyGoal(history, may, 8, time.UTC)
	assert.Equal(t, GoalProgress{Month: "2024-05", TrainingDays: 4, Target: 8, Percent: 50}, gp)

	assert.Equal(t, 100, MonthlyGoal(history, may, 2, time.UTC).Percent)
	assert.Equal(t, 0, MonthlyGoal(history, may.AddDate(0, 1, 0), 8, time.UTC).TrainingDays)
	assert.Equal(t, 0, MonthlyGoal(history, may, 0, time.UTC).Percent)
}

func TestStreak(t *testing.T) {
	assert.Equal(t, 4, Streak(history, day(4), time.UTC))
	// today not logged yet
	assert.Equal(t, 4, Streak(history, day(5), time.UTC))
	assert.Equal(t, 0, Streak(history, day(6), time.UTC))
	assert.Equal(t, 2, Streak(history, day(2), time.UTC))
	assert.Equal(t, 0, Streak(nil, day(2), nil))
}

func TestBuildReport(t *testing.T) {
	r := BuildReport(history, ReportParams{
		Catalog:  map[string][]string{"chest": {"Bench Press"}},
		Month:    day(1),
		Target:   10,
		Now:      day(4),
		Location: time.UTC,
	})

	require.Len(t, r.Progress, len(r.Volume))
	assert.Equal(t, "Bench Press", r.Progress[0].Exercise)
	require.NotNil(t, r.Goal)
	assert.Equal(t, 40, r.Goal.Percent)
	assert.Equal(t, 4, r.Streak)

	noGoal := BuildReport(history, ReportParams{Now: day(4)})
	assert.Nil(t, noGoal.Goal)
	assert.Equal(t, 6, noGoal.Balance[BodyPartOther])
}
