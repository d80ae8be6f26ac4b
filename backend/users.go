package backend

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/musclegram/musclegram/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (b *Backend) GetUser(ctx context.Context, id string) (*models.User, error) {
	if u, ok := b.userCache.Get(id); ok {
		return u, nil
	}

	var u models.User
	if err := b.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	b.userCache.Add(id, &u)
	return &u, nil
}

// GetUsers loads the given users, skipping ids that do not exist.
func (b *Backend) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	var missing []string
	for _, id := range dedupe(ids) {
		if u, ok := b.userCache.Get(id); ok {
			out[id] = u
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return out, nil
	}

	var users []models.User
	if err := b.db.WithContext(ctx).Find(&users, "id IN ?", missing).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for i := range users {
		u := &users[i]
		b.userCache.Add(u.ID, u)
		out[u.ID] = u
	}

	return out, nil
}

// UpsertUser creates the user on first save and overwrites the profile
// fields afterwards.
func (b *Backend) UpsertUser(ctx context.Context, u *models.User) (*models.User, error) {
	defer observeOp("upsert", "users", time.Now())

	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)

	if u.ID == "" {
		return nil, invalid("id", "required")
	}
	if u.Username == "" {
		return nil, invalid("username", "required")
	}
	if u.Email == "" {
		return nil, invalid("email", "required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return nil, invalid("email", "malformed")
	}

	now := b.now()
	u.UpdatedAt = now
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}

	if err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "username", "bio", "avatar", "updated_at"}),
	}).Create(u).Error; err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	b.userCache.Remove(u.ID)
	return b.GetUser(ctx, u.ID)
}

func (b *Backend) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 {
		limit = b.feedLimit
	}

	pat := query + "%"
	var users []models.User
	if err := b.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pat, pat).
		Order("username").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}
