package services

import (
	"time"

	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/models"
	"gorm.io/gorm"
)

// PostMessage appends a message to the project board. Any member may post.
// The timestamp is server-assigned at insert time; messages are immutable
// afterwards.
func PostMessage(gdb *gorm.DB, actorID, projectID uint, content string) (*models.Message, error) {
	member, err := authz.CanSendMessage(gdb, actorID, projectID)

	if err != nil {
		return nil, err
	}

	if !member {
		return nil, ErrDenied
	}

	message := models.Message{
		ProjectID: projectID,
		SenderID:  actorID,
		Content:   content,
	}

	if err := gdb.Create(&message).Error; err != nil {
		return nil, err
	}

	return &message, nil
}

// ListProjectMessages returns the project's messages sorted ascending by
// timestamp, each labelled with the sender's current username. Sender names
// are resolved at read time, so a renamed user relabels their history.
func ListProjectMessages(gdb *gorm.DB, projectID uint) ([]MessageView, error) {
	var messages []models.Message

	err := gdb.Preload("Sender").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	views := []MessageView{}

	for _, message := range messages {
		views = append(views, MessageView{
			ID:        message.ID,
			Content:   message.Content,
			Sender:    message.Sender.Username,
			Timestamp: message.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return views, nil
}
