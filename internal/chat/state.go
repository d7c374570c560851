// Package chat holds the per-session conversation state and the pure reducer that advances it.
package chat

import (
	"property-intake/internal/model"
)

// State is one session's conversation. Values are never mutated in place by Reduce.
type State struct {
	SessionID           *string                   `json:"sessionId"`
	Messages            []model.ChatMessage       `json:"messages"`
	ConversationContext model.ConversationContext `json:"conversationContext"`
	IsProcessing        bool                      `json:"isProcessing"`
	IsComplete          bool                      `json:"isComplete"`
}

// InitialState is the empty conversation
func InitialState() State {
	return State{
		Messages: []model.ChatMessage{},
		ConversationContext: model.ConversationContext{
			AskedQuestionIDs: []string{},
			AllAnswers:       map[string]any{},
		},
	}
}

// ActiveQuestion returns the message with the given id if it is a question still awaiting an answer
func (s State) ActiveQuestion(messageID string) (model.ChatMessage, bool) {
	for _, m := range s.Messages {
		if m.ID == messageID && m.IsActiveQuestion() {
			return m, true
		}
	}
	return model.ChatMessage{}, false
}

// Message returns the message with the given id
func (s State) Message(messageID string) (model.ChatMessage, bool) {
	for _, m := range s.Messages {
		if m.ID == messageID {
			return m, true
		}
	}
	return model.ChatMessage{}, false
}

// LastActiveQuestion returns the most recent question awaiting an answer
func (s State) LastActiveQuestion() (model.ChatMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsActiveQuestion() {
			return s.Messages[i], true
		}
	}
	return model.ChatMessage{}, false
}

// Clone deep-copies the slices and maps of the state
func (s State) Clone() State {
	out := s
	if s.SessionID != nil {
		id := *s.SessionID
		out.SessionID = &id
	}
	out.Messages = append([]model.ChatMessage{}, s.Messages...)
	out.ConversationContext = s.ConversationContext.Clone()
	return out
}
