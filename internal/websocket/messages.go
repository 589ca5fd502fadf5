package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
)

// Message types exchanged with clients
const (
	TypeChart    = "chart"
	TypeGainLoss = "gain_loss"
	TypeSummary  = "summary"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeError    = "error"
)

// Request is a message sent by a client
type Request struct {
	Type          string           `json:"type"`
	ID            string           `json:"id,omitempty"`
	Position      *models.Position `json:"position,omitempty"`
	ExpectedPrice *float64         `json:"expectedPrice,omitempty"`
}

// Message represents a WebSocket message sent to a client
type Message struct {
	Type  string      `json:"type"`
	ID    string      `json:"id,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// handleMessage answers one client request. It returns false when the client
// has to be dropped because its send buffer is full.
func (c *Client) handleMessage(data []byte) bool {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return c.sendError("", fmt.Sprintf("invalid message: %v", err))
	}

	ctx := context.Background()

	switch req.Type {
	case TypePing:
		return c.sendMessage(Message{Type: TypePong, ID: req.ID})

	case TypeChart:
		points, err := c.hub.calculator.Chart(ctx, req.Position)
		if err != nil {
			return c.sendError(req.ID, err.Error())
		}
		return c.sendMessage(Message{Type: TypeChart, ID: req.ID, Data: points})

	case TypeSummary:
		report, err := c.hub.calculator.Summary(ctx, req.Position)
		if err != nil {
			return c.sendError(req.ID, err.Error())
		}
		return c.sendMessage(Message{Type: TypeSummary, ID: req.ID, Data: report})

	case TypeGainLoss:
		if req.Position == nil {
			return c.sendError(req.ID, "position is required")
		}
		expectedPrice := req.Position.Price
		if req.ExpectedPrice != nil {
			expectedPrice = *req.ExpectedPrice
		}
		gainLoss, err := c.hub.calculator.GainLoss(ctx, req.Position, expectedPrice)
		if err != nil {
			return c.sendError(req.ID, err.Error())
		}
		return c.sendMessage(Message{Type: TypeGainLoss, ID: req.ID, Data: gainLoss})

	default:
		return c.sendError(req.ID, fmt.Sprintf("unknown message type %q", req.Type))
	}
}

func (c *Client) sendMessage(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Errorf("Failed to marshal message: %v", err)
		return c.sendError(msg.ID, "failed to encode response")
	}

	select {
	case c.send <- data:
		return true
	default:
		c.hub.log.Warnf("Dropping client %s with a full send buffer", c.id)
		return false
	}
}

func (c *Client) sendError(id, reason string) bool {
	return c.sendMessage(Message{
		Type:  TypeError,
		ID:    id,
		Error: reason,
	})
}
