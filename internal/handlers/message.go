package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/circuit-dev/circuit/db"
	"github.com/circuit-dev/circuit/internal/services"
	"github.com/circuit-dev/circuit/internal/utils"
	"github.com/gin-gonic/gin"
)

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func PostMessage(ctx *gin.Context) {
	projectID, ok := projectIDParam(ctx)

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body PostMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	message, err := services.PostMessage(db.DB, currentUser.ID, projectID, body.Content)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	view := services.MessageView{
		ID:        message.ID,
		Content:   message.Content,
		Sender:    currentUser.Username,
		Timestamp: message.CreatedAt.UTC().Format(time.RFC3339),
	}

	// Push to any members watching the project's live feed.
	BroadcastMessage(strconv.FormatUint(uint64(projectID), 10), view)

	ctx.JSON(http.StatusCreated, view)
}
