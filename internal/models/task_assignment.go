package models

import "time"

// TaskAssignment links a task to one of its assignees. The composite unique
// index rejects double-assignment of the same user; no soft delete, same
// reasoning as ProjectMembership.
type TaskAssignment struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uint      `gorm:"not null;uniqueIndex:idx_task_user"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_task_user"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
