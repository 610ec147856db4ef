// Package handlers holds the REST surface: account registration and login,
// chat creation and listing, message history and translation settings. The
// realtime surface lives in the ws package.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/access"
	"lingochat/auth"
	"lingochat/chat"
	"lingochat/store"
)

const requestTimeout = 10 * time.Second

// Services carries everything the REST handlers depend on.
type Services struct {
	Store  *store.Store
	Auth   *auth.Manager
	Chats  *chat.Service
	Access *access.Control
}

var svc Services

// Init wires the handler package before route registration.
func Init(s Services) {
	svc = s
}

// currentUserID reads the authenticated caller set by the JWT middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
