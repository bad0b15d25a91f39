package sse

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/basedmerge/tokengate/internal/model"
)

// Stream publishes access-flow events to the hub as JSON. Register its
// Publish method as a machine listener.
type Stream struct {
	hub    *Hub
	logger *slog.Logger
}

// NewStream creates a Stream over the hub.
func NewStream(hub *Hub, logger *slog.Logger) *Stream {
	return &Stream{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-stream")),
	}
}

// envelope is the wire shape of a streamed event.
type envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Address   string    `json:"address,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

type stateChangedPayload struct {
	State  string `json:"state"`
	Status string `json:"status"`
}

type mintSubmittedPayload struct {
	TransactionHash string `json:"transaction_hash"`
}

type scoreUpdatedPayload struct {
	BestScore int `json:"best_score"`
}

type gameUnlockedPayload struct {
	Username  string `json:"username"`
	BestScore int    `json:"best_score"`
	Ephemeral bool   `json:"ephemeral"`
}

// Publish broadcasts one event to every connected client. The SSE event
// name is the event type, so clients can subscribe selectively.
func (s *Stream) Publish(event model.Event) {
	data, err := json.Marshal(envelope{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Address:   event.Address,
		Payload:   wirePayload(event.Payload),
	})
	if err != nil {
		s.logger.Error("sse failed to encode event",
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	s.hub.BroadcastEvent(string(event.Type), string(data))
}

func wirePayload(payload any) any {
	switch p := payload.(type) {
	case model.StateChangedPayload:
		return stateChangedPayload{State: string(p.State), Status: p.Status}
	case model.MintSubmittedPayload:
		return mintSubmittedPayload{TransactionHash: p.TransactionHash}
	case model.ScoreUpdatedPayload:
		return scoreUpdatedPayload{BestScore: p.BestScore}
	case model.GameUnlockedPayload:
		return gameUnlockedPayload{Username: p.Username, BestScore: p.BestScore, Ephemeral: p.Ephemeral}
	}
	return payload
}
