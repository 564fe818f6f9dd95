package models

import "time"

// Follow is a directed edge: UserID follows FollowingID. The composite unique
// index and the check constraint back the application-level pre-checks, so a
// racing duplicate or self-follow insert fails at the store as well.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_following;check:user_id <> following_id" json:"-"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	FollowingID uint      `gorm:"not null;index;uniqueIndex:idx_user_following" json:"-"`
	Following   User      `gorm:"foreignKey:FollowingID" json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}
