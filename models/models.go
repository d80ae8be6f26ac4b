package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID          string    `gorm:"primarykey" json:"id"`
	Email       string    `gorm:"index" json:"email"`
	DisplayName string    `json:"displayName"`
	Username    string    `gorm:"index" json:"username"`
	Bio         string    `json:"bio"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Set is one set of an exercise. Weight and reps are kept as the strings the
// user typed so "62.5" round trips exactly.
type Set struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

type Exercise struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Sets  []Set  `json:"sets"`
	Photo string `json:"photo,omitempty"`
	Memo  string `json:"memo,omitempty"`
}

type Post struct {
	ID        string                       `gorm:"primarykey" json:"id"`
	UserID    string                       `gorm:"index" json:"userId"`
	Content   string                       `json:"content"`
	Exercise  datatypes.JSONType[Exercise] `json:"exercise"`
	Timestamp string                       `json:"timestamp"`
	Cid       string                       `json:"cid"`
	CreatedAt time.Time                    `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time                    `json:"updatedAt"`
}

type Like struct {
	ID        string    `gorm:"primarykey" json:"id"`
	PostID    string    `gorm:"index" json:"postId"`
	UserID    string    `gorm:"index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `gorm:"primarykey" json:"id"`
	PostID    string    `gorm:"index" json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	ParentID  string    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Follow struct {
	ID          string    `gorm:"primarykey" json:"id"`
	FollowerID  string    `gorm:"index" json:"followerId"`
	FollowingID string    `gorm:"index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CustomExercise struct {
	ID           string    `gorm:"primarykey" json:"id"`
	UserID       string    `gorm:"index" json:"userId"`
	BodyPart     string    `json:"bodyPart"`
	ExerciseName string    `json:"exerciseName"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	NotifKindLike    = "like"
	NotifKindFollow  = "follow"
	NotifKindComment = "comment"
)

type Notification struct {
	ID             string    `gorm:"primarykey" json:"id"`
	UserID         string    `gorm:"index" json:"userId"`
	FromUserID     string    `json:"fromUserId"`
	FromUserName   string    `json:"fromUserName"`
	FromUserAvatar string    `json:"fromUserAvatar"`
	Type           string    `json:"type"`
	PostID         string    `json:"postId"`
	Message        string    `json:"message"`
	IsRead         bool      `gorm:"index" json:"isRead"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

type DaysGoal struct {
	ID            string    `gorm:"primarykey" json:"id"`
	UserID        string    `gorm:"uniqueIndex" json:"userId"`
	MonthlyTarget int       `json:"monthlyTarget"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Post{},
		&Like{},
		&Comment{},
		&Follow{},
		&CustomExercise{},
		&Notification{},
		&DaysGoal{},
	}
}

func newID() string {
	return uuid.New().String()
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = newID()
	}
	return nil
}

func (c *CustomExercise) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = newID()
	}
	return nil
}

func (g *DaysGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = newID()
	}
	return nil
}
