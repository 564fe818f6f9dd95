package models

// Group is a thematic community for posts. Groups are read-only over the API
// and are written only by the seeding tool.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"unique;not null" json:"slug"`
	Description string `json:"description"`
}
