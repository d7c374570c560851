package chat

import "property-intake/internal/model"

// Action is a state transition request. The set is closed; Reduce ignores unknown implementations.
type Action interface {
	ActionType() string
}

// AddMessage appends a message. Build messages with a MessageFactory so they carry an id and timestamp.
type AddMessage struct {
	Message model.ChatMessage
}

// MessageUpdate is a partial message; nil fields are left as they are
type MessageUpdate struct {
	Content  *string
	Question *model.Question
	State    *model.QuestionState
	// SetAnswer distinguishes "clear the answer" from "leave it"
	SetAnswer bool
	Answer    any
}

type UpdateMessage struct {
	ID     string
	Update MessageUpdate
}

// AnswerQuestion records an answer against every question message asking QuestionID
type AnswerQuestion struct {
	QuestionID string
	Answer     any
}

type UpdateContext struct {
	Update model.ContextUpdate
}

type SetSessionID struct {
	SessionID string
}

type SetProcessing struct {
	Processing bool
}

type SetComplete struct {
	Complete bool
}

type Reset struct{}

func (AddMessage) ActionType() string     { return "ADD_MESSAGE" }
func (UpdateMessage) ActionType() string  { return "UPDATE_MESSAGE" }
func (AnswerQuestion) ActionType() string { return "ANSWER_QUESTION" }
func (UpdateContext) ActionType() string  { return "UPDATE_CONTEXT" }
func (SetSessionID) ActionType() string   { return "SET_SESSION_ID" }
func (SetProcessing) ActionType() string  { return "SET_PROCESSING" }
func (SetComplete) ActionType() string    { return "SET_COMPLETE" }
func (Reset) ActionType() string          { return "RESET" }
