package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
)

type autoCompletePayload struct {
	ChatID  string `json:"chatId"`
	Context string `json:"context"`
}

// HandleAutocomplete serves the autocomplete side channel: a separate
// authenticated session that shares nothing with the chat session except
// access control. Predictions go only to the caller's private room.
func (g *Gateway) HandleAutocomplete(c *gin.Context) {
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

	client.readLoop(g.handleAutocompleteEvent)

	g.hub.remove(client)
	conn.Close()
}

func (g *Gateway) handleAutocompleteEvent(c *Client, ev Event) {
	if ev.Type != "get_auto_complete" {
		log.Printf("Ignoring unknown event %q from user %s", ev.Type, c.userID)
		return
	}

	var p autoCompletePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		c.sendError("Invalid get_auto_complete payload")
		return
	}

	chatID, ok := g.memberOf(c, p.ChatID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.eventTimeout)
	defer cancel()
	prediction := g.completer.Complete(ctx, chatID, p.Context)

	g.hub.ToUser(c.userID, "predicted_text", prediction)
}
