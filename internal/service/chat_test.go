package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intake/internal/broker"
	"property-intake/internal/catalog"
	"property-intake/internal/chat"
	"property-intake/internal/model"
	"property-intake/internal/pkg/logger"
	"property-intake/internal/repository"
	"property-intake/internal/utils"
)

// flakyBroker fails selected calls and forwards the rest
type flakyBroker struct {
	broker.Client
	createErr  error
	submitErr  error
	summaryErr error
}

func (f *flakyBroker) CreateSession(ctx context.Context) (*model.CreateSessionResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Client.CreateSession(ctx)
}

func (f *flakyBroker) SubmitAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.BrokerSession, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.Client.SubmitAnswer(ctx, sessionID, req)
}

func (f *flakyBroker) GetSummary(ctx context.Context, sessionID string) (model.SessionSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return f.Client.GetSummary(ctx, sessionID)
}

func newTestChat(b broker.Client) (*ChatService, *repository.MemorySessionStore) {
	store := repository.NewMemorySessionStore(time.Hour, time.Minute)
	svc := NewChatService(b, store, catalog.Default(), NewEventHub(), logger.NewNop(), time.Second)
	return svc, store
}

func indiranagarMock() *broker.Mock {
	cat := catalog.Default()
	return broker.NewMock(cat.Set(catalog.Set3BHKIndiranagar)).Accept(cat.All()...)
}

func startSession(t *testing.T, svc *ChatService) (string, chat.State) {
	t.Helper()
	state, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.SessionID)
	return *state.SessionID, state
}

func lastMessage(state chat.State) model.ChatMessage {
	return state.Messages[len(state.Messages)-1]
}

func TestChatService_Initialize(t *testing.T) {
	svc, store := newTestChat(indiranagarMock())
	id, state := startSession(t, svc)

	assert.True(t, strings.HasPrefix(id, "mock-session-"))
	require.Len(t, state.Messages, 2)
	assert.Equal(t, model.MessageSystem, state.Messages[0].Type)
	assert.Equal(t, "Welcome to the Real Estate Agent! Let's find your perfect property.", state.Messages[0].Content)
	assert.True(t, state.Messages[1].IsActiveQuestion())
	assert.Equal(t, "req_type", state.Messages[1].Question.ID)
	assert.Equal(t, []string{"req_type"}, state.ConversationContext.AskedQuestionIDs)
	assert.False(t, state.IsProcessing)
	assert.False(t, state.IsComplete)

	stored, found, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, state, stored)
}

func TestChatService_InitializeBackendFailure(t *testing.T) {
	svc, store := newTestChat(&flakyBroker{Client: indiranagarMock(), createErr: errors.New("boom")})

	state, err := svc.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))

	assert.Nil(t, state.SessionID)
	assert.False(t, state.IsProcessing)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "Sorry, something went wrong: boom. Please refresh the page.", state.Messages[0].Content)
	assert.Equal(t, 0, store.Count())
}

func TestChatService_SubmitAnswerAdvances(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	id, state := startSession(t, svc)

	state, err := svc.SubmitAnswer(context.Background(), id, state.Messages[1].ID, "buy")
	require.NoError(t, err)

	require.Len(t, state.Messages, 4)
	answered := state.Messages[1]
	assert.Equal(t, model.QuestionAnswered, answered.State)
	assert.Equal(t, "buy", answered.Answer)

	assert.Equal(t, model.MessageSystem, state.Messages[2].Type)
	assert.Equal(t, "Got it: buy.", state.Messages[2].Content)

	next := state.Messages[3]
	assert.True(t, next.IsActiveQuestion())
	assert.Equal(t, "budget", next.Question.ID)

	assert.Equal(t, "buy", state.ConversationContext.AllAnswers["req_type"])
	assert.Equal(t, []string{"req_type", "budget"}, state.ConversationContext.AskedQuestionIDs)
	assert.False(t, state.IsProcessing)
}

func TestChatService_SubmitAnswerCompletes(t *testing.T) {
	questions := catalog.Default().Set(catalog.Set3BHKIndiranagar)[:2]
	svc, _ := newTestChat(broker.NewMock(questions))
	ctx := context.Background()
	id, state := startSession(t, svc)

	state, err := svc.SubmitAnswer(ctx, id, state.Messages[1].ID, "buy")
	require.NoError(t, err)
	budget, ok := state.LastActiveQuestion()
	require.True(t, ok)
	require.Equal(t, "budget", budget.Question.ID)

	state, err = svc.SubmitAnswer(ctx, id, budget.ID, []any{1.0, 2.0})
	require.NoError(t, err)

	assert.True(t, state.IsComplete)
	assert.False(t, state.IsProcessing)
	assert.Equal(t, completionMessage, lastMessage(state).Content)
	_, active := state.LastActiveQuestion()
	assert.False(t, active)

	summary, err := svc.Summary(ctx, id)
	require.NoError(t, err)
	assert.True(t, summary.IsComplete)
	require.Len(t, summary.Answers, 2)
	assert.Equal(t, "req_type", summary.Answers[0].QuestionID)
	assert.Equal(t, "Transaction Type", summary.Answers[0].Label)
	assert.Equal(t, "1 - 2 Cr", summary.Answers[1].Display)
	require.NotNil(t, summary.Criteria.ReqType)
	assert.Equal(t, "buy", *summary.Criteria.ReqType)
	require.NotNil(t, summary.Criteria.Budget)
	assert.Equal(t, [2]float64{1, 2}, *summary.Criteria.Budget)
	assert.Equal(t, "buy", summary.Backend["req_type"])
}

func TestChatService_SubmitAnswerRejections(t *testing.T) {
	svc, store := newTestChat(indiranagarMock())
	ctx := context.Background()
	id, state := startSession(t, svc)
	questionID := state.Messages[1].ID

	_, err := svc.SubmitAnswer(ctx, "nope", questionID, "buy")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SubmitAnswer(ctx, id, "missing", "buy")
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.SubmitAnswer(ctx, id, state.Messages[0].ID, "buy")
	assert.ErrorIs(t, err, ErrQuestionNotFound, "system messages cannot be answered")

	_, err = svc.SubmitAnswer(ctx, id, questionID, "lease")
	assert.ErrorIs(t, err, model.ErrInvalidAnswer)
	stored, _, _ := store.Get(ctx, id)
	assert.Len(t, stored.Messages, 2, "rejected answers leave the state untouched")

	_, err = svc.SubmitAnswer(ctx, id, questionID, "buy")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, id, questionID, "rent")
	assert.ErrorIs(t, err, ErrQuestionAnswered)
}

func TestChatService_SubmitAnswerBackendFailure(t *testing.T) {
	b := &flakyBroker{Client: indiranagarMock()}
	svc, store := newTestChat(b)
	ctx := context.Background()
	id, state := startSession(t, svc)

	b.submitErr = errors.New("boom")
	state, err := svc.SubmitAnswer(ctx, id, state.Messages[1].ID, "buy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))

	assert.Equal(t, model.QuestionAnswered, state.Messages[1].State)
	assert.Equal(t, "Sorry, something went wrong: boom. Please try again.", lastMessage(state).Content)
	assert.False(t, state.IsProcessing)

	stored, _, _ := store.Get(ctx, id)
	assert.Equal(t, state, stored)
}

func TestChatService_BusySession(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	id, state := startSession(t, svc)

	unlock, err := svc.acquire(id)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), id, state.Messages[1].ID, "buy")
	assert.ErrorIs(t, err, ErrSessionBusy)
	_, err = svc.SendMessage(context.Background(), id, "budget")
	assert.ErrorIs(t, err, ErrSessionBusy)

	unlock()
	_, err = svc.SubmitAnswer(context.Background(), id, state.Messages[1].ID, "buy")
	assert.NoError(t, err)
}

func TestChatService_SendMessageIntent(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	id, _ := startSession(t, svc)

	state, err := svc.SendMessage(context.Background(), id, "Looking for a 3BHK in Indiranagar")
	require.NoError(t, err)

	require.Len(t, state.Messages, 5)
	assert.Equal(t, model.MessageUser, state.Messages[2].Type)
	assert.Equal(t, "Got it! So you want a 3BHK in Indiranagar. Let me get a few more details.", state.Messages[3].Content)
	assert.True(t, state.Messages[4].IsActiveQuestion())
	assert.Equal(t, "budget", state.Messages[4].Question.ID)

	criteria := state.ConversationContext.ExtractedCriteria
	require.NotNil(t, criteria.BHK)
	assert.Equal(t, 3, *criteria.BHK)
	require.NotNil(t, criteria.Location)
	assert.Equal(t, "Indiranagar", *criteria.Location)
	assert.Equal(t, []string{"req_type", "budget"}, state.ConversationContext.AskedQuestionIDs)
}

func TestChatService_AnswerQuestionFromMessage(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	ctx := context.Background()
	id, _ := startSession(t, svc)

	state, err := svc.SendMessage(ctx, id, "2bhk please")
	require.NoError(t, err)
	asked := lastMessage(state)
	require.True(t, asked.IsActiveQuestion())
	assert.Equal(t, "location", asked.Question.ID)

	state, err = svc.SubmitAnswer(ctx, id, asked.ID, "indiranagar")
	require.NoError(t, err)

	answered, ok := state.Message(asked.ID)
	require.True(t, ok)
	assert.Equal(t, model.QuestionAnswered, answered.State)
	assert.Equal(t, "indiranagar", state.ConversationContext.AllAnswers["location"])
	assert.Equal(t, "Got it: indiranagar.", lastMessage(state).Content)
	assert.False(t, state.IsProcessing)

	_, ok = state.ActiveQuestion(state.Messages[1].ID)
	assert.True(t, ok, "the backend's current question stays active")
}

func TestChatService_SendMessageAlias(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	ctx := context.Background()
	id, state := startSession(t, svc)

	state, err := svc.SendMessage(ctx, id, "furnishing")
	require.NoError(t, err)
	assert.Equal(t, freshAskMessage, state.Messages[len(state.Messages)-2].Content)
	assert.Equal(t, "furnishing_status", lastMessage(state).Question.ID)

	state, err = svc.SendMessage(ctx, id, "furnishing")
	require.NoError(t, err)
	assert.Equal(t, askAgainMessage, state.Messages[len(state.Messages)-2].Content)
	assert.Equal(t, "furnishing_status", lastMessage(state).Question.ID)

	_, err = svc.SubmitAnswer(ctx, id, state.Messages[1].ID, "buy")
	require.NoError(t, err)
	state, err = svc.SendMessage(ctx, id, "transaction")
	require.NoError(t, err)
	assert.Equal(t, `You already answered this one. Your answer: "buy"`, state.Messages[len(state.Messages)-2].Content)
	assert.Equal(t, "req_type", lastMessage(state).Question.ID)
}

func TestControlAliases_NotClaimedByIntentParser(t *testing.T) {
	parser := NewIntentParser()
	for _, entry := range utils.ControlAliases {
		for _, alias := range entry.Aliases {
			assert.Zero(t, parser.Parse(alias).Confidence, "alias %q would never reach the control lookup", alias)
		}
	}
}

func TestChatService_SendMessageFallback(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	ctx := context.Background()
	id, _ := startSession(t, svc)

	state, err := svc.SendMessage(ctx, id, "hello there")
	require.NoError(t, err)
	assert.Equal(t,
		"I didn't recognize that control. Try typing one of these: req_type, budget, property_type, property_status, furnishing_status, special_requests, proximity_location, or community_preference",
		lastMessage(state).Content)

	_, err = svc.SendMessage(ctx, id, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = svc.SendMessage(ctx, "nope", "budget")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestChatService_Reset(t *testing.T) {
	svc, store := newTestChat(indiranagarMock())
	ctx := context.Background()
	id, _ := startSession(t, svc)

	state, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, chat.InitialState(), state)
	assert.Equal(t, 0, store.Count())

	_, err = svc.State(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Reset(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestChatService_SummaryWithoutBackend(t *testing.T) {
	b := &flakyBroker{Client: indiranagarMock()}
	svc, _ := newTestChat(b)
	id, _ := startSession(t, svc)

	b.summaryErr = errors.New("down")
	summary, err := svc.Summary(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, summary.Backend)
	assert.Empty(t, summary.Answers)
	assert.False(t, summary.IsComplete)
}

func TestChatService_SubscribeReceivesCommits(t *testing.T) {
	svc, _ := newTestChat(indiranagarMock())
	id, _ := startSession(t, svc)

	updates, cancel := svc.Subscribe(id)
	defer cancel()

	_, err := svc.SendMessage(context.Background(), id, "hello there")
	require.NoError(t, err)

	select {
	case state := <-updates:
		require.Len(t, state.Messages, 4)
		assert.Equal(t, "hello there", state.Messages[2].Content)
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}
}
