package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"property-intake/internal/broker"
	"property-intake/internal/model"
	"property-intake/internal/pkg/logger"
)

var (
	ErrEmptyRequirement = errors.New("requirement is empty")
	ErrEmptyLocation    = errors.New("location is required")
	ErrLeadNotFound     = errors.New("lead not found")
)

// LeadService registers requirements with the broker backend and serves locality market data
type LeadService struct {
	broker        broker.Client
	distributions *cache.Cache
	log           logger.Logger
}

// NewLeadService caches distribution responses for cacheTTL
func NewLeadService(brokerClient broker.Client, cacheTTL time.Duration, log logger.Logger) *LeadService {
	return &LeadService{
		broker:        brokerClient,
		distributions: cache.New(cacheTTL, 2*cacheTTL),
		log:           log,
	}
}

// Create registers a free-text requirement. Extra fields are sent alongside the query.
func (s *LeadService) Create(ctx context.Context, query string, extra map[string]any) (*model.Lead, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyRequirement
	}

	lead, err := s.broker.CreateLead(ctx, model.CreateLeadRequest{Query: query, Extra: extra})
	if err != nil {
		s.log.Error("lead", "Failed to create lead", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	s.log.Info("lead", "Lead created", map[string]interface{}{
		"lead_id": lead.LeadID,
		"matches": len(lead.MatchedProperties),
	})
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, leadID string) (*model.Lead, error) {
	lead, err := s.broker.GetLead(ctx, leadID)
	if broker.IsNotFound(err) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context) ([]model.Lead, error) {
	leads, err := s.broker.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return leads, nil
}

// Distributions returns the market breakdown around location, split into the
// locality-wide aggregate and the per-locality entries
func (s *LeadService) Distributions(ctx context.Context, location string) (*model.LocalityDistributions, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}

	key := strings.ToLower(location)
	if x, found := s.distributions.Get(key); found {
		return x.(*model.LocalityDistributions), nil
	}

	resp, err := s.broker.GetDistributions(ctx, location)
	if err != nil {
		s.log.Error("lead", "Failed to fetch distributions", map[string]interface{}{
			"location": location,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "backend reported failure"
		}
		return nil, fmt.Errorf("%w: %s", ErrBackend, msg)
	}

	out := &model.LocalityDistributions{
		Location:      location,
		Distributions: make(map[string]model.Distribution, len(resp.Data.Distributions)),
	}
	for name, d := range resp.Data.Distributions {
		if name == model.AggregateDistributionKey {
			agg := d
			out.Aggregate = &agg
			continue
		}
		out.Distributions[name] = d
	}
	out.Count = len(out.Distributions)

	s.distributions.Set(key, out, cache.DefaultExpiration)
	return out, nil
}
