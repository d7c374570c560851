package model

import (
	"strconv"
	"strings"
	"time"
)

type MessageType string

const (
	MessageUser     MessageType = "user"
	MessageSystem   MessageType = "system"
	MessageQuestion MessageType = "question"
	MessageTyping   MessageType = "typing"
)

type QuestionState string

const (
	QuestionActive   QuestionState = "active"
	QuestionAnswered QuestionState = "answered"
)

// ChatMessage is one entry of the append-only conversation log. Question, Answer and
// State are only set on question messages.
type ChatMessage struct {
	ID        string        `json:"id"`
	Type      MessageType   `json:"type"`
	Content   string        `json:"content,omitempty"`
	Question  *Question     `json:"question,omitempty"`
	Answer    any           `json:"answer,omitempty"`
	State     QuestionState `json:"state,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// IsActiveQuestion reports whether the message is a question still awaiting an answer
func (m ChatMessage) IsActiveQuestion() bool {
	return m.Type == MessageQuestion && m.Question != nil && m.State == QuestionActive
}

// Criteria is what the conversation has learned about the search so far
type Criteria struct {
	BHK              *int        `json:"bhk,omitempty"`
	Location         *string     `json:"location,omitempty"`
	PropertyType     *string     `json:"property_type,omitempty"`
	ReqType          *string     `json:"req_type,omitempty"`
	Budget           *[2]float64 `json:"budget,omitempty"`
	PropertyStatus   *string     `json:"property_status,omitempty"`
	FurnishingStatus *string     `json:"furnishing_status,omitempty"`
	SpecialRequests  []string    `json:"special_requests,omitempty"`
}

// Merge returns c with every field set in other copied over it
func (c Criteria) Merge(other Criteria) Criteria {
	out := c.Clone()
	if other.BHK != nil {
		v := *other.BHK
		out.BHK = &v
	}
	if other.Location != nil {
		v := *other.Location
		out.Location = &v
	}
	if other.PropertyType != nil {
		v := *other.PropertyType
		out.PropertyType = &v
	}
	if other.ReqType != nil {
		v := *other.ReqType
		out.ReqType = &v
	}
	if other.Budget != nil {
		v := *other.Budget
		out.Budget = &v
	}
	if other.PropertyStatus != nil {
		v := *other.PropertyStatus
		out.PropertyStatus = &v
	}
	if other.FurnishingStatus != nil {
		v := *other.FurnishingStatus
		out.FurnishingStatus = &v
	}
	if other.SpecialRequests != nil {
		out.SpecialRequests = append([]string(nil), other.SpecialRequests...)
	}
	return out
}

func (c Criteria) Clone() Criteria {
	out := Criteria{}
	if c.BHK != nil {
		v := *c.BHK
		out.BHK = &v
	}
	if c.Location != nil {
		v := *c.Location
		out.Location = &v
	}
	if c.PropertyType != nil {
		v := *c.PropertyType
		out.PropertyType = &v
	}
	if c.ReqType != nil {
		v := *c.ReqType
		out.ReqType = &v
	}
	if c.Budget != nil {
		v := *c.Budget
		out.Budget = &v
	}
	if c.PropertyStatus != nil {
		v := *c.PropertyStatus
		out.PropertyStatus = &v
	}
	if c.FurnishingStatus != nil {
		v := *c.FurnishingStatus
		out.FurnishingStatus = &v
	}
	if c.SpecialRequests != nil {
		out.SpecialRequests = append([]string(nil), c.SpecialRequests...)
	}
	return out
}

// ConversationContext tracks what was asked and answered
type ConversationContext struct {
	ExtractedCriteria Criteria       `json:"extractedCriteria"`
	AskedQuestionIDs  []string       `json:"askedQuestionIds"`
	AllAnswers        map[string]any `json:"allAnswers"`
}

// Asked reports whether the question id has been surfaced
func (c ConversationContext) Asked(id string) bool {
	for _, asked := range c.AskedQuestionIDs {
		if asked == id {
			return true
		}
	}
	return false
}

// Answer returns the recorded answer for id
func (c ConversationContext) Answer(id string) (any, bool) {
	v, ok := c.AllAnswers[id]
	return v, ok
}

// Clone copies the slices and maps. Answer values are shared and treated as read-only.
func (c ConversationContext) Clone() ConversationContext {
	out := ConversationContext{
		ExtractedCriteria: c.ExtractedCriteria.Clone(),
		AskedQuestionIDs:  append([]string{}, c.AskedQuestionIDs...),
		AllAnswers:        make(map[string]any, len(c.AllAnswers)),
	}
	for k, v := range c.AllAnswers {
		out.AllAnswers[k] = v
	}
	return out
}

// ContextUpdate is a partial ConversationContext. Nil fields are left untouched.
type ContextUpdate struct {
	ExtractedCriteria *Criteria
	AskedQuestionIDs  []string
	AllAnswers        map[string]any
}

// EffectiveCriteria overlays explicit answers on the extracted criteria
func (c ConversationContext) EffectiveCriteria() Criteria {
	out := c.ExtractedCriteria.Clone()
	str := func(id string) (*string, bool) {
		s, ok := c.AllAnswers[id].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		return &s, true
	}

	if v, ok := str("req_type"); ok {
		out.ReqType = v
	}
	if v, ok := str("property_type"); ok {
		out.PropertyType = v
	}
	if v, ok := str("property_status"); ok {
		out.PropertyStatus = v
	}
	if v, ok := str("furnishing_status"); ok {
		out.FurnishingStatus = v
	}
	if v, ok := str("location"); ok {
		loc := strings.ReplaceAll(*v, "_", " ")
		out.Location = &loc
	}
	if lo, hi, ok := toPair(c.AllAnswers["budget"]); ok {
		out.Budget = &[2]float64{lo, hi}
	}
	switch v := c.AllAnswers["bedroom_count"].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			out.BHK = &n
		}
	default:
		if f, ok := toFloat(v); ok {
			n := int(f)
			out.BHK = &n
		}
	}
	if tags, ok := toStrings(c.AllAnswers["special_requests"]); ok && len(tags) > 0 {
		out.SpecialRequests = append([]string(nil), tags...)
	}
	return out
}

// AnsweredQuestion is one answer as shown in a conversation summary
type AnsweredQuestion struct {
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
	Answer     any    `json:"answer"`
	Display    string `json:"display"`
}

// ConversationSummary combines the backend summary with the locally recorded answers
type ConversationSummary struct {
	SessionID            string             `json:"session_id"`
	IsComplete           bool               `json:"is_complete"`
	CompletionPercentage int                `json:"completion_percentage"`
	Criteria             Criteria           `json:"criteria"`
	Answers              []AnsweredQuestion `json:"answers"`
	Backend              SessionSummary     `json:"backend,omitempty"`
}
