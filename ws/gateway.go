// Package ws terminates the realtime protocol: one authenticated
// connection per user session, per-chat rooms, presence propagation and
// the autocomplete side channel.
package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
	"lingochat/presence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin checks are handled by the CORS layer in front
		return true
	},
}

type Authenticator interface {
	Verify(token string) (string, error)
}

type UserFinder interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Access interface {
	IsMember(ctx context.Context, userID, chatID primitive.ObjectID) (bool, error)
	ChatIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DirectContacts(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type MessageSender interface {
	Send(ctx context.Context, chatID, senderID primitive.ObjectID, value, contentType string) (*models.FullMessage, error)
}

type Presence interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	Publish(ctx context.Context, ev presence.Event) error
}

type Completer interface {
	Complete(ctx context.Context, chatID primitive.ObjectID, partial string) string
}

type Gateway struct {
	hub       *Hub
	auth      Authenticator
	users     UserFinder
	access    Access
	messages  MessageSender
	presence  Presence
	completer Completer

	// budget for membership checks and presence writes; message sends get
	// sendTimeout since they await the translation fan-out
	eventTimeout time.Duration
	sendTimeout  time.Duration
}

func NewGateway(hub *Hub, auth Authenticator, users UserFinder, access Access, messages MessageSender, pres Presence, completer Completer) *Gateway {
	return &Gateway{
		hub:          hub,
		auth:         auth,
		users:        users,
		access:       access,
		messages:     messages,
		presence:     pres,
		completer:    completer,
		eventTimeout: 10 * time.Second,
		sendTimeout:  2 * time.Minute,
	}
}

func (g *Gateway) Hub() *Hub {
	return g.hub
}

// authenticate resolves the connection's bearer credential before the
// upgrade. Failure refuses the connection; no protocol is exposed.
func (g *Gateway) authenticate(c *gin.Context) (primitive.ObjectID, bool) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return primitive.NilObjectID, false
	}

	userIDHex, err := g.auth.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), g.eventTimeout)
	defer cancel()
	if _, err := g.users.UserByID(ctx, userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// HandleChat serves the chat session: auto-join all permitted rooms, mark
// presence online and process events until the transport closes.
func (g *Gateway) HandleChat(c *gin.Context) {
	userID, ok := g.authenticate(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn, userID.Hex())
	g.hub.add(client)
	go client.writePump()

	g.hub.Join(client, userRoom(client.userID))

	ctx, cancel := context.WithTimeout(context.Background(), g.eventTimeout)
	chatIDs, err := g.access.ChatIDs(ctx, userID)
	cancel()
	if err != nil {
		log.Printf("Chat auto-join failed for user %s: %v", client.userID, err)
	}
	for _, id := range chatIDs {
		g.hub.Join(client, id.Hex())
	}

	// presence writes are advisory and best-effort
	ctx, cancel = context.WithTimeout(context.Background(), g.eventTimeout)
	if err := g.presence.SetOnline(ctx, client.userID); err != nil {
		log.Printf("Presence online write failed for user %s: %v", client.userID, err)
	}
	if err := g.presence.Publish(ctx, presence.Event{UserID: client.userID, Status: presence.StatusOnline}); err != nil {
		log.Printf("Presence online publish failed for user %s: %v", client.userID, err)
	}
	cancel()

	client.readLoop(g.handleChatEvent)

	g.hub.remove(client)
	conn.Close()

	ctx, cancel = context.WithTimeout(context.Background(), g.eventTimeout)
	defer cancel()
	if err := g.presence.SetOffline(ctx, client.userID); err != nil {
		log.Printf("Presence offline write failed for user %s: %v", client.userID, err)
	}
	if err := g.presence.Publish(ctx, presence.Event{UserID: client.userID, Status: presence.StatusOffline}); err != nil {
		log.Printf("Presence offline publish failed for user %s: %v", client.userID, err)
	}
}

// RunPresenceFanout forwards presence events from the shared pub/sub
// channel into each direct contact's private room. This is how a status
// change reaches contacts connected to a different gateway instance.
func (g *Gateway) RunPresenceFanout(ctx context.Context, events <-chan presence.Event) {
	for ev := range events {
		userID, err := primitive.ObjectIDFromHex(ev.UserID)
		if err != nil {
			continue
		}

		cctx, cancel := context.WithTimeout(ctx, g.eventTimeout)
		contacts, err := g.access.DirectContacts(cctx, userID)
		cancel()
		if err != nil {
			log.Printf("Presence fan-out lookup failed for user %s: %v", ev.UserID, err)
			continue
		}

		for _, contact := range contacts {
			g.hub.ToUser(contact.Hex(), "presence", ev)
		}
	}
}
