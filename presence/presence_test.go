package presence

import (
	"encoding/json"
	"testing"
)

func TestEventWireFormat(t *testing.T) {
	data, err := json.Marshal(Event{UserID: "abc123", Status: StatusOnline})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Field names are a cross-instance wire contract.
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if raw["userId"] != "abc123" {
		t.Errorf("Expected userId field, got %v", raw)
	}
	if raw["status"] != "online" {
		t.Errorf("Expected status field, got %v", raw)
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := parseEvent([]byte(`{"userId":"u1","status":"offline"}`))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if ev.UserID != "u1" || ev.Status != StatusOffline {
		t.Errorf("Unexpected event: %+v", ev)
	}

	if _, err := parseEvent([]byte("not json")); err == nil {
		t.Error("Expected error for malformed payload")
	}
}
