package model

// BrokerSession is the broker backend's view of a conversation after each step
type BrokerSession struct {
	SessionID           string         `json:"session_id"`
	CurrentQuestion     *Question      `json:"current_question"`
	Acknowledgment      string         `json:"acknowledgment,omitempty"`
	Message             string         `json:"message"`
	Completed           bool           `json:"completed"`
	UserSummary         map[string]any `json:"user_summary"`
	ProcessedAnswer     any            `json:"processed_answer,omitempty"`
	ProcessedQuestionID string         `json:"processed_question_id,omitempty"`
	Messages            []string       `json:"messages"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type SubmitAnswerRequest struct {
	Answer     any    `json:"answer"`
	Type       string `json:"type"`
	QuestionID string `json:"question_id"`
}

// SessionSummary is the free-form final summary of a session's answers
type SessionSummary map[string]any
