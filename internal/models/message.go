package models

import "gorm.io/gorm"

// Message rows are immutable once created; CreatedAt is the server-assigned
// timestamp used for ordering.
type Message struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index"`
	SenderID  uint   `gorm:"not null;index"`
	Content   string `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sender  User    `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
