package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studiojuai/studio-agent/internal/cloud"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ActionStatus string

const (
	StatusPending ActionStatus = "pending"
	StatusSuccess ActionStatus = "success"
	StatusError   ActionStatus = "error"
)

var (
	ErrTurnNotFound = errors.New("turn not found")
	ErrStatusFinal  = errors.New("action status already finalized")
)

// Turn is one entry in the conversation log. Role and Content are immutable
// after creation; ActionStatus is the only field patched later, exactly once.
type Turn struct {
	ID           string             `json:"id"`
	Role         Role               `json:"role"`
	Content      string             `json:"content"`
	Timestamp    time.Time          `json:"timestamp"`
	Routing      *cloud.RoutingInfo `json:"routing_info,omitempty"`
	ActionStatus ActionStatus       `json:"action_status,omitempty"`
}

// Transcript is the append-only conversation log consumed by the chat panel.
type Transcript struct {
	mu    sync.Mutex
	turns []*Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn and returns a copy of it.
func (t *Transcript) Append(role Role, content string, routing *cloud.RoutingInfo) Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn := &Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Routing:   routing,
	}
	t.turns = append(t.turns, turn)
	return *turn
}

// AppendPending adds an assistant turn whose action outcome is not known yet.
func (t *Transcript) AppendPending(content string, routing *cloud.RoutingInfo) Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	turn := &Turn{
		ID:           uuid.NewString(),
		Role:         RoleAssistant,
		Content:      content,
		Timestamp:    time.Now(),
		Routing:      routing,
		ActionStatus: StatusPending,
	}
	t.turns = append(t.turns, turn)
	return *turn
}

// SetActionStatus resolves a pending turn to success or error. A turn's
// status can only move from pending once.
func (t *Transcript) SetActionStatus(id string, status ActionStatus) error {
	if status != StatusSuccess && status != StatusError {
		return errors.New("status must be success or error")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, turn := range t.turns {
		if turn.ID == id {
			if turn.ActionStatus != StatusPending {
				return ErrStatusFinal
			}
			turn.ActionStatus = status
			return nil
		}
	}
	return ErrTurnNotFound
}

// Turns returns a copy of the log in append order.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Turn, len(t.turns))
	for i, turn := range t.turns {
		out[i] = *turn
	}
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
