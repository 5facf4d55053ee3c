package models

import (
	"time"
)

// CatalogItem holds the columns shared by tasks and gifts. For a task Points
// is the reward, for a gift it is the cost.
type CatalogItem struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null" json:"points"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Emoji       string    `gorm:"type:varchar(16)" json:"emoji"`
	FamilyID    *uint64   `gorm:"index" json:"family_id"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cataloged is satisfied by pointers to catalog models, so generic code can
// reach the shared columns.
type Cataloged[T any] interface {
	*T
	Item() *CatalogItem
}

type Task struct {
	CatalogItem
}

func (t *Task) Item() *CatalogItem { return &t.CatalogItem }

type Gift struct {
	CatalogItem
}

func (g *Gift) Item() *CatalogItem { return &g.CatalogItem }
