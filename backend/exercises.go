package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/musclegram/musclegram/models"
	"gorm.io/gorm"
)

const (
	BodyPartChest     = "chest"
	BodyPartBack      = "back"
	BodyPartShoulders = "shoulders"
	BodyPartArms      = "arms"
	BodyPartLegs      = "legs"
	BodyPartAbs       = "abs"
)

var BodyParts = []string{BodyPartChest, BodyPartBack, BodyPartShoulders, BodyPartArms, BodyPartLegs, BodyPartAbs}

var defaultCatalog = map[string][]string{
	BodyPartChest:     {"Bench Press", "Incline Bench Press", "Dumbbell Press", "Dumbbell Fly", "Chest Press", "Dips"},
	BodyPartBack:      {"Deadlift", "Lat Pulldown", "Pull Up", "Bent Over Row", "Seated Row", "Back Extension"},
	BodyPartShoulders: {"Overhead Press", "Side Raise", "Front Raise", "Rear Delt Fly", "Upright Row"},
	BodyPartArms:      {"Barbell Curl", "Dumbbell Curl", "Hammer Curl", "Triceps Pushdown", "French Press"},
	BodyPartLegs:      {"Squat", "Leg Press", "Leg Extension", "Leg Curl", "Lunge", "Calf Raise"},
	BodyPartAbs:       {"Crunch", "Leg Raise", "Plank", "Ab Roller"},
}

// DefaultCatalog returns a copy of the built-in body part catalog.
func DefaultCatalog() map[string][]string {
	out := make(map[string][]string, len(defaultCatalog))
	for k, v := range defaultCatalog {
		out[k] = slices.Clone(v)
	}
	return out
}

func (b *Backend) GetCustomExercises(ctx context.Context, userID string) ([]models.CustomExercise, error) {
	exs, _, err := b.exerciseCache.Get(ctx, userID, func(ctx context.Context) ([]models.CustomExercise, error) {
		var exs []models.CustomExercise
		if err := b.db.WithContext(ctx).Order("created_at").Find(&exs, "user_id = ?", userID).Error; err != nil {
			return nil, fmt.Errorf("get custom exercises: %w", err)
		}
		return exs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(exs), nil
}

func (b *Backend) AddCustomExercise(ctx context.Context, userID, bodyPart, name string) (*models.CustomExercise, error) {
	defer observeOp("create", "custom_exercises", time.Now())

	name = strings.TrimSpace(name)
	if userID == "" {
		return nil, invalid("userId", "required")
	}
	if !slices.Contains(BodyParts, bodyPart) {
		return nil, invalid("bodyPart", "unknown body part")
	}
	if name == "" {
		return nil, invalid("exerciseName", "required")
	}

	ce := &models.CustomExercise{
		UserID:       userID,
		BodyPart:     bodyPart,
		ExerciseName: name,
		CreatedAt:    b.now(),
	}
	if err := b.db.WithContext(ctx).Create(ce).Error; err != nil {
		return nil, fmt.Errorf("create custom exercise: %w", err)
	}

	b.exerciseCache.Invalidate(userID)
	return ce, nil
}

func (b *Backend) DeleteCustomExercise(ctx context.Context, viewer, id string) error {
	var ce models.CustomExercise
	if err := b.db.WithContext(ctx).First(&ce, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get custom exercise: %w", err)
	}
	if ce.UserID != viewer {
		return ErrForbidden
	}

	if err := b.db.WithContext(ctx).Delete(&models.CustomExercise{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete custom exercise: %w", err)
	}

	b.exerciseCache.Invalidate(viewer)
	return nil
}

// Catalog merges the built-in catalog with userID's own exercises.
func (b *Backend) Catalog(ctx context.Context, userID string) (map[string][]string, error) {
	cat := DefaultCatalog()
	if userID == "" {
		return cat, nil
	}

	exs, err := b.GetCustomExercises(ctx, userID)
	if err != nil {
		return nil, err
	}
	// a name keeps the body part it was first listed under; built-in
	// names come first
	listed := make(map[string]bool)
	for _, names := range cat {
		for _, n := range names {
			listed[n] = true
		}
	}
	for _, ce := range exs {
		if listed[ce.ExerciseName] {
			continue
		}
		listed[ce.ExerciseName] = true
		cat[ce.BodyPart] = append(cat[ce.BodyPart], ce.ExerciseName)
	}
	return cat, nil
}
