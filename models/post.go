package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. AuthorID is set from the authenticated principal at
// creation and never changes afterwards.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"not null" json:"text"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	Image     string         `json:"image,omitempty"`
	GroupID   *uint          `gorm:"index" json:"group,omitempty"`
	CreatedAt time.Time      `json:"pub_date"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
