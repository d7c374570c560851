package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"property-intake/internal/model"
	"property-intake/internal/pkg/logger"
	"property-intake/internal/repository"
	"property-intake/internal/utils"
)

// ErrListingNotFound is returned when a listing id does not exist
var ErrListingNotFound = errors.New("listing not found")

// messageTypes maps a requirement type to the listing message type that satisfies it
var messageTypes = map[string]string{
	"buy":  "supply_sale",
	"rent": "supply_rent",
}

// MatchService matches chat criteria against stored listings
type MatchService struct {
	repo     repository.ListingRepository
	sessions repository.SessionStore
	ranker   *Ranker
	log      logger.Logger
}

// NewMatchService creates a new match service
func NewMatchService(
	repo repository.ListingRepository,
	sessions repository.SessionStore,
	ranker *Ranker,
	log logger.Logger,
) *MatchService {
	return &MatchService{
		repo:     repo,
		sessions: sessions,
		ranker:   ranker,
		log:      log,
	}
}

// FiltersFromCriteria converts conversation criteria into listing filters.
// Budgets are in crores and only apply to purchases.
func FiltersFromCriteria(c model.Criteria) model.ListingFilters {
	filters := model.ListingFilters{
		Bedrooms:         c.BHK,
		PropertyType:     c.PropertyType,
		Location:         c.Location,
		PropertyStatus:   c.PropertyStatus,
		FurnishingStatus: c.FurnishingStatus,
		SpecialFeatures:  utils.NormalizeFeatures(c.SpecialRequests),
	}
	if len(filters.SpecialFeatures) == 0 {
		filters.SpecialFeatures = nil
	}

	reqType := ""
	if c.ReqType != nil {
		reqType = strings.ToLower(*c.ReqType)
	}
	if mt, ok := messageTypes[reqType]; ok {
		filters.MessageType = &mt
	}

	if c.Budget != nil && reqType != "rent" {
		lo := c.Budget[0] * model.RupeesPerCrore
		hi := c.Budget[1] * model.RupeesPerCrore
		if lo > 0 {
			filters.PriceMin = &lo
		}
		if hi > 0 {
			filters.PriceMax = &hi
		}
	}
	return filters
}

// MatchSession matches the criteria gathered so far in a chat session
func (s *MatchService) MatchSession(ctx context.Context, sessionID string, opts model.MatchOptions) (*model.MatchResponse, error) {
	state, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	resp, err := s.Match(ctx, state.ConversationContext.EffectiveCriteria(), opts)
	if err != nil {
		return nil, err
	}
	resp.SessionID = sessionID

	// Log match (non-blocking)
	go func(entry model.MatchLog) {
		if err := s.repo.LogMatch(context.Background(), entry); err != nil {
			s.log.Warn("match", "Failed to log match", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}(matchLog(resp))

	return resp, nil
}

// Match searches and ranks listings for criteria
func (s *MatchService) Match(ctx context.Context, criteria model.Criteria, opts model.MatchOptions) (*model.MatchResponse, error) {
	startTime := time.Now()
	filters := FiltersFromCriteria(criteria)

	listings, total, err := s.repo.SearchWithFilters(ctx, &filters, opts.TopK, opts.Offset)
	if err != nil {
		return nil, err
	}

	results := s.ranker.RankResults(listings, &filters)

	page, totalPages := 1, 0
	if opts.TopK > 0 {
		page = opts.Offset/opts.TopK + 1
		totalPages = (total + opts.TopK - 1) / opts.TopK
	}

	return &model.MatchResponse{
		Criteria:   criteria,
		Filters:    filters,
		Results:    results,
		Total:      total,
		Page:       page,
		PageSize:   opts.TopK,
		TotalPages: totalPages,
		HasMore:    opts.Offset+len(results) < total,
		Took:       time.Since(startTime).Milliseconds(),
	}, nil
}

func matchLog(resp *model.MatchResponse) model.MatchLog {
	ids := make([]int64, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.ID
	}
	return model.MatchLog{
		SessionID:      resp.SessionID,
		Criteria:       resp.Criteria,
		Filters:        resp.Filters,
		ResultCount:    resp.Total,
		ListingIDs:     ids,
		ResponseTimeMs: int(resp.Took),
	}
}

// GetListing retrieves a single listing by ID
func (s *MatchService) GetListing(ctx context.Context, listingID int64) (*model.Listing, error) {
	listing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Similar returns the listings closest to listingID
func (s *MatchService) Similar(ctx context.Context, listingID int64, limit int) (*model.SimilarResponse, error) {
	source, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	listings, err := s.repo.SimilarListings(ctx, listingID, limit)
	if err != nil {
		return nil, err
	}

	filters := model.ListingFilters{
		Bedrooms:     source.BedroomCount,
		PropertyType: source.PropertyType,
		MessageType:  &source.MessageType,
	}
	results := make([]model.ListingMatch, 0, len(listings))
	for i, l := range listings {
		results = append(results, model.ListingMatch{
			Listing:        l,
			Score:          1.0 - float64(i)/float64(len(listings)),
			MatchedReasons: s.ranker.generateMatchedReasons(l, &filters, 0),
		})
	}
	return &model.SimilarResponse{ListingID: listingID, Results: results}, nil
}

// UpdateEmbeddings updates embeddings for multiple listings
func (s *MatchService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	return s.repo.BatchUpdateEmbeddings(ctx, items)
}

// LogFeedback logs a user action on a matched listing
func (s *MatchService) LogFeedback(ctx context.Context, sessionID string, listingID int64, action string) error {
	return s.repo.LogFeedback(ctx, sessionID, listingID, action)
}
