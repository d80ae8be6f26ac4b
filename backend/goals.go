package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/musclegram/musclegram/models"
	"gorm.io/gorm"
)

func (b *Backend) GetDaysGoal(ctx context.Context, userID string) (*models.DaysGoal, error) {
	var g models.DaysGoal
	if err := b.db.WithContext(ctx).First(&g, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get days goal: %w", err)
	}
	return &g, nil
}

// SetDaysGoal upserts the single goal row for userID.
func (b *Backend) SetDaysGoal(ctx context.Context, userID string, target int) (*models.DaysGoal, error) {
	defer observeOp("upsert", "days_goals", time.Now())

	if userID == "" {
		return nil, invalid("userId", "required")
	}
	if target < 1 || target > 31 {
		return nil, invalid("monthlyTarget", "must be between 1 and 31")
	}

	now := b.now()
	g := &models.DaysGoal{
		UserID:        userID,
		MonthlyTarget: target,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := b.db.WithContext(ctx).Create(g).Error
	if err == nil {
		return g, nil
	}
	if !isDuplicateKey(err) {
		return nil, fmt.Errorf("create days goal: %w", err)
	}

	if err := b.db.WithContext(ctx).Model(&models.DaysGoal{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"monthly_target": target, "updated_at": now}).Error; err != nil {
		return nil, fmt.Errorf("update days goal: %w", err)
	}

	return b.GetDaysGoal(ctx, userID)
}
