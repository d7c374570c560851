package service

import (
	"math"

	"property-intake/internal/model"
)

// SelectNextQuestion returns the next question to ask, or nil when nothing is left.
// Questions already asked or already covered by extracted criteria are skipped;
// required questions come first, then catalog order.
func SelectNextQuestion(ctx model.ConversationContext, questions []model.Question) *model.Question {
	var firstOptional *model.Question
	for i := range questions {
		q := &questions[i]
		if ctx.Asked(q.ID) || isCovered(ctx, q.ID) {
			continue
		}
		if q.Required {
			out := *q
			return &out
		}
		if firstOptional == nil {
			firstOptional = q
		}
	}
	if firstOptional == nil {
		return nil
	}
	out := *firstOptional
	return &out
}

// IsConversationComplete reports whether every required question has been asked.
// Asked is enough; an unanswered required question still counts.
func IsConversationComplete(ctx model.ConversationContext, questions []model.Question) bool {
	for _, q := range questions {
		if q.Required && !ctx.Asked(q.ID) {
			return false
		}
	}
	return true
}

// CompletionPercentage is the share of required questions asked, rounded, or 0 when none are required
func CompletionPercentage(ctx model.ConversationContext, questions []model.Question) int {
	required, asked := 0, 0
	for _, q := range questions {
		if !q.Required {
			continue
		}
		required++
		if ctx.Asked(q.ID) {
			asked++
		}
	}
	if required == 0 {
		return 0
	}
	return int(math.Round(float64(asked) / float64(required) * 100))
}

// isCovered reports whether the user already supplied this question's value
func isCovered(ctx model.ConversationContext, id string) bool {
	c := ctx.ExtractedCriteria
	switch id {
	case "req_type":
		return nonEmpty(c.ReqType)
	case "budget":
		return c.Budget != nil
	case "bedroom_count":
		return c.BHK != nil && *c.BHK != 0
	case "property_type":
		return nonEmpty(c.PropertyType)
	case "property_status":
		return nonEmpty(c.PropertyStatus)
	case "furnishing_status":
		return nonEmpty(c.FurnishingStatus)
	default:
		v, ok := ctx.Answer(id)
		return ok && !isBlankAnswer(v)
	}
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

func isBlankAnswer(v any) bool {
	switch a := v.(type) {
	case nil:
		return true
	case string:
		return a == ""
	case bool:
		return !a
	case float64:
		return a == 0
	case int:
		return a == 0
	}
	return false
}
