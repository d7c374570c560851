package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"property-intake/internal/broker"
	"property-intake/internal/catalog"
	"property-intake/internal/chat"
	"property-intake/internal/model"
	"property-intake/internal/pkg/logger"
	"property-intake/internal/repository"
	"property-intake/internal/utils"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionBusy      = errors.New("session is processing another request")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionAnswered = errors.New("question already answered")
	ErrBackend          = errors.New("broker backend request failed")
)

const (
	completionMessage = "Perfect! I've captured all your preferences. Here's your personalized summary."
	askAgainMessage   = "Let me ask you this again..."
	freshAskMessage   = "Great, let's answer this question:"
)

// ChatService drives a conversation: it talks to the broker backend, runs every state change
// through chat.Reduce and persists the result
type ChatService struct {
	broker   broker.Client
	store    repository.SessionStore
	catalog  *catalog.Catalog
	parser   *IntentParser
	messages *chat.MessageFactory
	events   *EventHub
	log      logger.Logger
	timeout  time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewChatService creates a chat service. A zero timeout leaves backend calls bounded only by ctx.
func NewChatService(
	brokerClient broker.Client,
	store repository.SessionStore,
	cat *catalog.Catalog,
	events *EventHub,
	log logger.Logger,
	timeout time.Duration,
) *ChatService {
	return &ChatService{
		broker:   brokerClient,
		store:    store,
		catalog:  cat,
		parser:   NewIntentParser(),
		messages: chat.NewMessageFactory(),
		events:   events,
		log:      log,
		timeout:  timeout,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Initialize opens a backend session and shows its first question. On backend failure the
// returned state carries the error as a system message.
func (s *ChatService) Initialize(ctx context.Context) (chat.State, error) {
	state := chat.Reduce(chat.InitialState(), chat.SetProcessing{Processing: true})

	callCtx, cancel := s.backendContext(ctx)
	defer cancel()

	created, err := s.broker.CreateSession(callCtx)
	if err != nil {
		s.log.Error("chat", "Failed to create session", map[string]interface{}{"error": err.Error()})
		return s.initFailed(state, err), fmt.Errorf("%w: %w", ErrBackend, err)
	}

	sessionID := created.SessionID
	unlock, err := s.acquire(sessionID)
	if err != nil {
		return state, err
	}
	defer unlock()

	state = chat.Reduce(state, chat.SetSessionID{SessionID: sessionID})
	if err := s.commit(ctx, sessionID, state); err != nil {
		return state, err
	}

	session, err := s.broker.GetSession(callCtx, sessionID)
	if err != nil {
		s.log.Error("chat", "Failed to fetch first question", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		state = s.initFailed(state, err)
		if cerr := s.commit(ctx, sessionID, state); cerr != nil {
			return state, cerr
		}
		return state, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	state = chat.Reduce(state, chat.UpdateContext{Update: model.ContextUpdate{
		AllAnswers: mergeAnswers(nil, session.UserSummary),
	}})
	if text := firstNonEmpty(created.Message, session.Message); text != "" {
		state = chat.Reduce(state, chat.AddMessage{Message: s.messages.System(text)})
	}
	if session.Completed {
		state = chat.Reduce(state, chat.SetComplete{Complete: true})
	} else if session.CurrentQuestion != nil {
		state = s.showBackendQuestion(state, *session.CurrentQuestion)
	}
	state = chat.Reduce(state, chat.SetProcessing{Processing: false})

	s.log.Info("chat", "Session initialized", map[string]interface{}{"session_id": sessionID})
	return state, s.commit(ctx, sessionID, state)
}

func (s *ChatService) initFailed(state chat.State, err error) chat.State {
	return chat.ReduceAll(state,
		chat.AddMessage{Message: s.messages.System(
			fmt.Sprintf("Sorry, something went wrong: %s. Please refresh the page.", err.Error()))},
		chat.SetProcessing{Processing: false},
	)
}

// SubmitAnswer records the answer to an active question message and advances the backend session.
// Invalid answers are rejected before any backend call.
func (s *ChatService) SubmitAnswer(ctx context.Context, sessionID, messageID string, answer any) (chat.State, error) {
	unlock, err := s.acquire(sessionID)
	if err != nil {
		return chat.State{}, err
	}
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return chat.State{}, err
	}

	msg, ok := state.Message(messageID)
	if !ok || msg.Type != model.MessageQuestion || msg.Question == nil {
		return state, ErrQuestionNotFound
	}
	if msg.State == model.QuestionAnswered {
		return state, ErrQuestionAnswered
	}
	q := *msg.Question
	if err := q.ValidateAnswer(answer); err != nil {
		return state, err
	}

	state = chat.ReduceAll(state,
		chat.AnswerQuestion{QuestionID: q.ID, Answer: answer},
		chat.SetProcessing{Processing: true},
	)
	if err := s.commit(ctx, sessionID, state); err != nil {
		return state, err
	}

	callCtx, cancel := s.backendContext(ctx)
	defer cancel()

	resp, err := s.broker.SubmitAnswer(callCtx, sessionID, model.SubmitAnswerRequest{
		Answer:     answer,
		Type:       string(q.ControlType()),
		QuestionID: q.ID,
	})
	if err != nil {
		s.log.Error("chat", "Failed to submit answer", map[string]interface{}{
			"session_id":  sessionID,
			"question_id": q.ID,
			"error":       err.Error(),
		})
		state = chat.ReduceAll(state,
			chat.AddMessage{Message: s.messages.System(
				fmt.Sprintf("Sorry, something went wrong: %s. Please try again.", err.Error()))},
			chat.SetProcessing{Processing: false},
		)
		if cerr := s.commit(ctx, sessionID, state); cerr != nil {
			return state, cerr
		}
		return state, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	state = chat.Reduce(state, chat.UpdateContext{Update: model.ContextUpdate{
		AllAnswers: mergeAnswers(state.ConversationContext.AllAnswers, resp.UserSummary),
	}})

	if resp.Completed {
		state = chat.ReduceAll(state,
			chat.SetComplete{Complete: true},
			chat.AddMessage{Message: s.messages.System(completionMessage)},
		)
	} else {
		// the acknowledgment replaces the system message
		if text := firstNonEmpty(resp.Acknowledgment, resp.Message); text != "" {
			state = chat.Reduce(state, chat.AddMessage{Message: s.messages.System(text)})
		}
		if resp.CurrentQuestion != nil {
			state = s.showBackendQuestion(state, *resp.CurrentQuestion)
		}
	}
	state = chat.Reduce(state, chat.SetProcessing{Processing: false})

	return state, s.commit(ctx, sessionID, state)
}

// SendMessage handles free text: parsed criteria pick the next catalog question, a control
// alias re-surfaces that control, anything else gets a list of valid controls
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (chat.State, error) {
	if strings.TrimSpace(text) == "" {
		return chat.State{}, ErrEmptyMessage
	}

	unlock, err := s.acquire(sessionID)
	if err != nil {
		return chat.State{}, err
	}
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return chat.State{}, err
	}

	state = chat.Reduce(state, chat.AddMessage{Message: s.messages.User(text)})

	intent := s.parser.Parse(text)
	switch {
	case intent.Confidence > 0:
		state = s.applyIntent(state, intent)
	default:
		if controlID, ok := utils.ResolveControlID(text); ok {
			state = s.surfaceControl(state, controlID)
		} else {
			state = chat.Reduce(state, chat.AddMessage{Message: s.messages.System(
				"I didn't recognize that control. Try typing one of these: " + controlList())})
		}
	}

	return state, s.commit(ctx, sessionID, state)
}

func (s *ChatService) applyIntent(state chat.State, intent *model.ParsedIntent) chat.State {
	criteria := intent.Criteria.AsCriteria()
	state = chat.ReduceAll(state,
		chat.UpdateContext{Update: model.ContextUpdate{ExtractedCriteria: &criteria}},
		chat.AddMessage{Message: s.messages.System(AcknowledgmentMessage(intent))},
	)

	questions := s.catalog.ForCriteria(state.ConversationContext.ExtractedCriteria)
	if next := SelectNextQuestion(state.ConversationContext, questions); next != nil {
		return s.surface(state, *next)
	}
	if IsConversationComplete(state.ConversationContext, questions) && !state.IsComplete {
		state = chat.ReduceAll(state,
			chat.SetComplete{Complete: true},
			chat.AddMessage{Message: s.messages.System(completionMessage)},
		)
	}
	return state
}

func (s *ChatService) surfaceControl(state chat.State, controlID string) chat.State {
	ctx := state.ConversationContext
	q, ok := s.catalog.Find(controlID, ctx.ExtractedCriteria)
	if !ok {
		return chat.Reduce(state, chat.AddMessage{Message: s.messages.System(
			"Sorry, I couldn't find that question. Try typing one of these: " + controlList())})
	}

	var notice string
	if answer, answered := ctx.Answer(controlID); answered {
		encoded, err := json.Marshal(answer)
		if err != nil {
			encoded = []byte(fmt.Sprint(answer))
		}
		notice = "You already answered this one. Your answer: " + string(encoded)
	} else if ctx.Asked(controlID) {
		notice = askAgainMessage
	} else {
		notice = freshAskMessage
	}

	state = chat.Reduce(state, chat.AddMessage{Message: s.messages.System(notice)})
	return s.surface(state, *q)
}

// surface shows q as a new active question and records it as asked
func (s *ChatService) surface(state chat.State, q model.Question) chat.State {
	if !state.ConversationContext.Asked(q.ID) {
		asked := append(append([]string{}, state.ConversationContext.AskedQuestionIDs...), q.ID)
		state = chat.Reduce(state, chat.UpdateContext{Update: model.ContextUpdate{AskedQuestionIDs: asked}})
	}
	return chat.Reduce(state, chat.AddMessage{Message: s.messages.Question(q)})
}

// showBackendQuestion surfaces the backend's current question unless it is already waiting for an answer
func (s *ChatService) showBackendQuestion(state chat.State, q model.Question) chat.State {
	for _, m := range state.Messages {
		if m.IsActiveQuestion() && m.Question.ID == q.ID {
			return state
		}
	}
	return s.surface(state, q)
}

// Reset drops the session's conversation
func (s *ChatService) Reset(ctx context.Context, sessionID string) (chat.State, error) {
	unlock, err := s.acquire(sessionID)
	if err != nil {
		return chat.State{}, err
	}
	defer unlock()

	if _, err := s.load(ctx, sessionID); err != nil {
		return chat.State{}, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return chat.State{}, err
	}

	state := chat.Reduce(chat.State{}, chat.Reset{})
	s.events.Publish(sessionID, state)

	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()

	s.log.Info("chat", "Session reset", map[string]interface{}{"session_id": sessionID})
	return state, nil
}

// State returns the stored conversation
func (s *ChatService) State(ctx context.Context, sessionID string) (chat.State, error) {
	return s.load(ctx, sessionID)
}

// Summary combines the recorded answers with the backend's summary. A failing backend leaves
// Backend empty.
func (s *ChatService) Summary(ctx context.Context, sessionID string) (*model.ConversationSummary, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	convCtx := state.ConversationContext
	summary := &model.ConversationSummary{
		SessionID:            sessionID,
		IsComplete:           state.IsComplete,
		CompletionPercentage: CompletionPercentage(convCtx, s.catalog.ForCriteria(convCtx.ExtractedCriteria)),
		Criteria:             convCtx.EffectiveCriteria(),
		Answers:              answeredQuestions(state),
	}

	callCtx, cancel := s.backendContext(ctx)
	defer cancel()

	backend, err := s.broker.GetSummary(callCtx, sessionID)
	if err != nil {
		s.log.Warn("chat", "Failed to fetch backend summary", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return summary, nil
	}
	summary.Backend = backend
	return summary, nil
}

// answeredQuestions lists each answered question once, in the order it was first shown
func answeredQuestions(state chat.State) []model.AnsweredQuestion {
	out := []model.AnsweredQuestion{}
	seen := map[string]bool{}
	for _, m := range state.Messages {
		if m.Type != model.MessageQuestion || m.Question == nil || seen[m.Question.ID] {
			continue
		}
		answer, ok := state.ConversationContext.Answer(m.Question.ID)
		if !ok {
			continue
		}
		seen[m.Question.ID] = true
		label := m.Question.Label
		if label == "" {
			label = m.Question.Text
		}
		out = append(out, model.AnsweredQuestion{
			QuestionID: m.Question.ID,
			Label:      label,
			Answer:     answer,
			Display:    model.FormatAnswer(answer, m.Question),
		})
	}
	return out
}

// Subscribe streams state snapshots of a session until cancel is called
func (s *ChatService) Subscribe(sessionID string) (<-chan chat.State, func()) {
	return s.events.Subscribe(sessionID)
}

func (s *ChatService) acquire(sessionID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	if !l.TryLock() {
		return nil, ErrSessionBusy
	}
	return l.Unlock, nil
}

func (s *ChatService) load(ctx context.Context, sessionID string) (chat.State, error) {
	state, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return chat.State{}, err
	}
	if !found {
		return chat.State{}, ErrSessionNotFound
	}
	return state, nil
}

// commit persists state and notifies subscribers. It outlives a cancelled request so
// isProcessing is never left set.
func (s *ChatService) commit(ctx context.Context, sessionID string, state chat.State) error {
	if err := s.store.Save(context.WithoutCancel(ctx), sessionID, state); err != nil {
		s.log.Error("chat", "Failed to save session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	s.events.Publish(sessionID, state)
	return nil
}

func (s *ChatService) backendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func mergeAnswers(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// controlList renders the alias table's control ids as "a, b, or c"
func controlList() string {
	ids := utils.ControlIDs()
	if len(ids) < 2 {
		return strings.Join(ids, "")
	}
	return strings.Join(ids[:len(ids)-1], ", ") + ", or " + ids[len(ids)-1]
}
