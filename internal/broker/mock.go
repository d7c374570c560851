package broker

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"property-intake/internal/model"
)

const (
	mockWelcomeMessage  = "Welcome to the Real Estate Agent! Let's find your perfect property."
	mockCompleteMessage = "Thanks! I have everything I need to find your matches."
)

// Mock is an in-memory broker backend that walks a fixed question list,
// required questions first
type Mock struct {
	questions []model.Question
	extra     []model.Question
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*mockSession
	leads    []model.Lead
}

type mockSession struct {
	next    int
	summary map[string]any
}

// NewMock creates a mock backend asking questions in the given order
func NewMock(questions []model.Question) *Mock {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Required && !ordered[j].Required
	})
	return &Mock{
		questions: ordered,
		now:       time.Now,
		sessions:  make(map[string]*mockSession),
	}
}

// Accept lets sessions answer questions outside the walked list, such as ones a
// chat message brought up from another question set. Answers to them never move the cursor.
func (m *Mock) Accept(questions ...model.Question) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extra = append(m.extra, questions...)
	return m
}

func (m *Mock) CreateSession(_ context.Context) (*model.CreateSessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := "mock-session-" + uuid.NewString()
	m.sessions[id] = &mockSession{summary: map[string]any{}}
	return &model.CreateSessionResponse{SessionID: id, Message: mockWelcomeMessage}, nil
}

func (m *Mock) GetSession(_ context.Context, sessionID string) (*model.BrokerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, notFound("Session not found")
	}
	return m.view(sessionID, s), nil
}

func (m *Mock) SubmitAnswer(_ context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.BrokerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, notFound("Session not found")
	}
	if s.next >= len(m.questions) {
		return nil, &APIError{StatusCode: http.StatusBadRequest, Detail: "Session already completed"}
	}

	q, idx := m.find(req.QuestionID)
	if q == nil {
		return nil, &APIError{
			StatusCode: http.StatusBadRequest,
			Detail:     fmt.Sprintf("Unknown question %s", req.QuestionID),
		}
	}
	if err := q.ValidateAnswer(req.Answer); err != nil {
		return nil, &APIError{StatusCode: http.StatusUnprocessableEntity, Detail: err.Error()}
	}

	// answers to other questions are recorded without moving the cursor
	s.summary[q.ID] = req.Answer
	if idx == s.next {
		s.next++
		for s.next < len(m.questions) {
			if _, answered := s.summary[m.questions[s.next].ID]; !answered {
				break
			}
			s.next++
		}
	}

	resp := m.view(sessionID, s)
	resp.ProcessedAnswer = req.Answer
	resp.ProcessedQuestionID = q.ID
	if formatted := model.FormatAnswer(req.Answer, q); formatted != "" {
		resp.Acknowledgment = "Got it: " + formatted + "."
	}
	return resp, nil
}

func (m *Mock) find(questionID string) (*model.Question, int) {
	for i := range m.questions {
		if m.questions[i].ID == questionID {
			q := m.questions[i]
			return &q, i
		}
	}
	for i := range m.extra {
		if m.extra[i].ID == questionID {
			q := m.extra[i]
			return &q, -1
		}
	}
	return nil, -1
}

func (m *Mock) view(sessionID string, s *mockSession) *model.BrokerSession {
	resp := &model.BrokerSession{
		SessionID:   sessionID,
		UserSummary: copyAnswers(s.summary),
		Messages:    []string{},
	}
	if s.next >= len(m.questions) {
		resp.Completed = true
		resp.Message = mockCompleteMessage
		return resp
	}
	q := m.questions[s.next]
	resp.CurrentQuestion = &q
	resp.Message = q.Text
	return resp
}

func (m *Mock) GetSummary(_ context.Context, sessionID string) (model.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, notFound("Session not found")
	}
	return model.SessionSummary(copyAnswers(s.summary)), nil
}

// CreateLead registers the requirement without matching it against any inventory
func (m *Mock) CreateLead(_ context.Context, req model.CreateLeadRequest) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC().Format(time.RFC3339)
	id := uuid.NewString()
	lead := model.Lead{
		LeadID:            id,
		ID:                id,
		Query:             strings.TrimSpace(req.Query),
		MissingCriteria:   []string{"budget", "bhk", "location"},
		MatchedProperties: []model.MatchedProperty{},
		NearbyLocalities:  []model.NearbyLocality{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	m.leads = append(m.leads, lead)
	return &lead, nil
}

func (m *Mock) GetLead(_ context.Context, leadID string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.leads {
		if l.LeadID == leadID {
			lead := l
			return &lead, nil
		}
	}
	return nil, notFound("Lead not found")
}

func (m *Mock) ListLeads(_ context.Context) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Lead, len(m.leads))
	copy(out, m.leads)
	return out, nil
}

func (m *Mock) GetDistributions(_ context.Context, location string) (*model.DistributionResponse, error) {
	resp := &model.DistributionResponse{Success: true, Count: 2, Message: "Distributions fetched successfully"}
	resp.Data.Distributions = map[string]model.Distribution{
		model.AggregateDistributionKey: sampleDistribution(1),
		location:                       sampleDistribution(0.4),
	}
	return resp, nil
}

func sampleDistribution(scale float64) model.Distribution {
	bucket := func(name string, count int) model.DistributionBucket {
		return model.DistributionBucket{Name: name, Count: int(float64(count) * scale)}
	}
	return model.Distribution{
		Price: []model.DistributionBucket{
			bucket("< 1 Cr", 42), bucket("1-2 Cr", 118), bucket("2-3 Cr", 64), bucket("> 3 Cr", 21),
		},
		Area: []model.DistributionBucket{
			bucket("< 1000 sqft", 35), bucket("1000-1500 sqft", 96), bucket("1500-2000 sqft", 80), bucket("> 2000 sqft", 34),
		},
		PropertyType: []model.DistributionBucket{
			bucket("apartment", 198), bucket("villa", 18), bucket("independent_house", 29),
		},
		Bedroom: []model.DistributionBucket{
			bucket("1 BHK", 25), bucket("2 BHK", 88), bucket("3 BHK", 102), bucket("4+ BHK", 30),
		},
	}
}

func notFound(detail string) error {
	return &APIError{StatusCode: http.StatusNotFound, Detail: detail}
}

func copyAnswers(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*Mock)(nil)
)
