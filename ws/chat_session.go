package ws

import (
	"context"
	"encoding/json"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type joinChatPayload struct {
	ChatID string `json:"chatId"`
}

type sendMessagePayload struct {
	ChatID      string `json:"chatId"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type typingPayload struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

type typingEvent struct {
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"isTyping"`
	ChatID   string `json:"chatId"`
}

// handleChatEvent dispatches one client event. Every failure is scoped to
// the offending caller; the connection always survives.
func (g *Gateway) handleChatEvent(c *Client, ev Event) {
	switch ev.Type {
	case "join_chat":
		g.handleJoinChat(c, ev.Payload)
	case "leave_chat":
		g.handleLeaveChat(c, ev.Payload)
	case "send_message":
		g.handleSendMessage(c, ev.Payload)
	case "typing":
		g.handleTyping(c, ev.Payload)
	default:
		log.Printf("Ignoring unknown event %q from user %s", ev.Type, c.userID)
	}
}

// memberOf authorizes the caller against the chat. A store failure reads
// as denied: better a spurious error event than an unauthorized action.
func (g *Gateway) memberOf(c *Client, chatIDHex string) (primitive.ObjectID, bool) {
	chatID, err := primitive.ObjectIDFromHex(chatIDHex)
	if err != nil {
		c.sendError("Invalid chat id")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(c.userID)
	if err != nil {
		c.sendError("Invalid user id")
		return primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.eventTimeout)
	defer cancel()
	ok, err := g.access.IsMember(ctx, userID, chatID)
	if err != nil {
		log.Printf("Membership check failed for user %s chat %s: %v", c.userID, chatIDHex, err)
		c.sendError("You do not have access to this chat")
		return primitive.NilObjectID, false
	}
	if !ok {
		c.sendError("You do not have access to this chat")
		return primitive.NilObjectID, false
	}
	return chatID, true
}

func (g *Gateway) handleJoinChat(c *Client, payload json.RawMessage) {
	var p joinChatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("Invalid join_chat payload")
		return
	}
	if _, ok := g.memberOf(c, p.ChatID); !ok {
		return
	}
	g.hub.Join(c, p.ChatID)
}

// leave_chat is always permitted and idempotent.
func (g *Gateway) handleLeaveChat(c *Client, payload json.RawMessage) {
	var p joinChatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("Invalid leave_chat payload")
		return
	}
	g.hub.Leave(c, p.ChatID)
}

func (g *Gateway) handleSendMessage(c *Client, payload json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("Invalid send_message payload")
		return
	}

	chatID, ok := g.memberOf(c, p.ChatID)
	if !ok {
		return
	}
	senderID, _ := primitive.ObjectIDFromHex(c.userID)

	ctx, cancel := context.WithTimeout(context.Background(), g.sendTimeout)
	defer cancel()
	msg, err := g.messages.Send(ctx, chatID, senderID, p.Content, p.ContentType)
	if err != nil {
		log.Printf("Message send failed for user %s chat %s: %v", c.userID, p.ChatID, err)
		c.sendError("Failed to send message")
		return
	}

	g.hub.Broadcast(p.ChatID, "new_message", msg)
}

// typing events relay to every other room member: fire-and-forget, no
// persistence, no delivery guarantee.
func (g *Gateway) handleTyping(c *Client, payload json.RawMessage) {
	var p typingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("Invalid typing payload")
		return
	}
	if _, ok := g.memberOf(c, p.ChatID); !ok {
		return
	}

	g.hub.BroadcastExcept(p.ChatID, c, "typing", typingEvent{
		UserID:   c.userID,
		IsTyping: p.IsTyping,
		ChatID:   p.ChatID,
	})
}
