package chat

import (
	"time"

	"github.com/google/uuid"

	"property-intake/internal/model"
)

// MessageFactory stamps new messages with an id and timestamp
type MessageFactory struct {
	NewID func() string
	Now   func() time.Time
}

// NewMessageFactory uses random UUIDs and the wall clock
func NewMessageFactory() *MessageFactory {
	return &MessageFactory{
		NewID: func() string { return uuid.New().String() },
		Now:   time.Now,
	}
}

func (f *MessageFactory) stamp(m model.ChatMessage) model.ChatMessage {
	m.ID = f.NewID()
	m.Timestamp = f.Now().UTC()
	return m
}

func (f *MessageFactory) User(content string) model.ChatMessage {
	return f.stamp(model.ChatMessage{Type: model.MessageUser, Content: content})
}

func (f *MessageFactory) System(content string) model.ChatMessage {
	return f.stamp(model.ChatMessage{Type: model.MessageSystem, Content: content})
}

// Question wraps q in an active question message
func (f *MessageFactory) Question(q model.Question) model.ChatMessage {
	return f.stamp(model.ChatMessage{Type: model.MessageQuestion, Question: &q, State: model.QuestionActive})
}

// Typing is a transient indicator shown while a request is in flight; it is never stored
func (f *MessageFactory) Typing() model.ChatMessage {
	return f.stamp(model.ChatMessage{Type: model.MessageTyping})
}
