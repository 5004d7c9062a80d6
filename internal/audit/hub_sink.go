package audit

import (
	"context"
	"encoding/json"

	"go-pos-ledger/internal/model"
)

// Publisher fans a message out to live clients.
type Publisher interface {
	Publish(msg []byte)
}

// HubSink pushes entries to connected WebSocket clients.
type HubSink struct {
	hub Publisher
}

func NewHubSink(hub Publisher) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Name() string { return "hub" }

func (s *HubSink) Write(_ context.Context, entry model.LogEntry) error {
	payload := map[string]interface{}{
		"type":     "audit_log",
		"category": entry.Category,
		"entry":    entry,
		"message":  entry.Message,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.hub.Publish(msg)
	return nil
}
