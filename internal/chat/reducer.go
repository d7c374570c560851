package chat

import (
	"property-intake/internal/model"
)

// Reduce applies action to state and returns the next state. The input is never modified;
// slices and maps touched by a transition are copied first.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddMessage:
		next := state
		next.Messages = append(append(make([]model.ChatMessage, 0, len(state.Messages)+1), state.Messages...), a.Message)
		return next

	case UpdateMessage:
		idx := -1
		for i, m := range state.Messages {
			if m.ID == a.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state
		}
		next := state
		next.Messages = append([]model.ChatMessage{}, state.Messages...)
		next.Messages[idx] = applyUpdate(next.Messages[idx], a.Update)
		return next

	case AnswerQuestion:
		matched := false
		messages := append([]model.ChatMessage{}, state.Messages...)
		for i, m := range messages {
			if m.Type == model.MessageQuestion && m.Question != nil && m.Question.ID == a.QuestionID {
				m.Answer = a.Answer
				m.State = model.QuestionAnswered
				messages[i] = m
				matched = true
			}
		}
		if !matched {
			return state
		}

		next := state
		next.Messages = messages
		ctx := state.ConversationContext.Clone()
		ctx.AllAnswers[a.QuestionID] = a.Answer
		if !ctx.Asked(a.QuestionID) {
			ctx.AskedQuestionIDs = append(ctx.AskedQuestionIDs, a.QuestionID)
		}
		next.ConversationContext = ctx
		return next

	case UpdateContext:
		next := state
		ctx := state.ConversationContext.Clone()
		if a.Update.ExtractedCriteria != nil {
			ctx.ExtractedCriteria = ctx.ExtractedCriteria.Merge(*a.Update.ExtractedCriteria)
		}
		if a.Update.AskedQuestionIDs != nil {
			ctx.AskedQuestionIDs = append([]string{}, a.Update.AskedQuestionIDs...)
		}
		if a.Update.AllAnswers != nil {
			ctx.AllAnswers = make(map[string]any, len(a.Update.AllAnswers))
			for k, v := range a.Update.AllAnswers {
				ctx.AllAnswers[k] = v
			}
		}
		next.ConversationContext = ctx
		return next

	case SetSessionID:
		next := state
		id := a.SessionID
		next.SessionID = &id
		return next

	case SetProcessing:
		next := state
		next.IsProcessing = a.Processing
		return next

	case SetComplete:
		next := state
		next.IsComplete = a.Complete
		return next

	case Reset:
		return InitialState()
	}

	return state
}

// ReduceAll folds actions over state in order
func ReduceAll(state State, actions ...Action) State {
	for _, a := range actions {
		state = Reduce(state, a)
	}
	return state
}

func applyUpdate(m model.ChatMessage, u MessageUpdate) model.ChatMessage {
	if u.Content != nil {
		m.Content = *u.Content
	}
	if u.Question != nil {
		q := *u.Question
		m.Question = &q
	}
	if u.SetAnswer {
		m.Answer = u.Answer
	}
	// answered questions never go back to active
	if u.State != nil && !(m.State == model.QuestionAnswered && *u.State == model.QuestionActive) {
		m.State = *u.State
	}
	return m
}
