package models

import "time"

// ProjectMembership grants a user visibility and action rights within a
// project. No soft delete: a removed membership must free the composite
// unique index so the user can be re-added.
type ProjectMembership struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_user_project"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
