package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lingochat/chat"
	"lingochat/models"
)

type CreateChatRequest struct {
	Users       []string `json:"users" binding:"required"`
	Name        string   `json:"name"`
	IsGroupChat bool     `json:"isGroupChat"`
}

func CreateChat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	created, err := svc.Chats.Create(ctx, userID, req.Users, req.Name, req.IsGroupChat)
	if err != nil {
		if chat.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func GetChats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chats, err := svc.Chats.List(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chats"})
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}

	c.JSON(http.StatusOK, chats)
}
