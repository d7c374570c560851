package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/pgvector/pgvector-go"

	"property-intake/internal/model"
	"property-intake/internal/utils"
)

//go:embed listings_seed.json
var listingsSeed []byte

// MemoryListingRepository serves listings from process memory, seeded with sample Bangalore listings
type MemoryListingRepository struct {
	mu       sync.RWMutex
	listings []model.Listing
	matches  []model.MatchLog
	feedback map[string][]string
}

// NewMemoryListingRepository loads the bundled sample listings
func NewMemoryListingRepository() (*MemoryListingRepository, error) {
	var listings []model.Listing
	if err := json.Unmarshal(listingsSeed, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listing seed: %w", err)
	}
	return NewMemoryListingRepositoryFrom(listings), nil
}

// NewMemoryListingRepositoryFrom serves the given listings
func NewMemoryListingRepositoryFrom(listings []model.Listing) *MemoryListingRepository {
	sorted := make([]model.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &MemoryListingRepository{
		listings: sorted,
		feedback: make(map[string][]string),
	}
}

func (r *MemoryListingRepository) SearchWithFilters(
	_ context.Context,
	filters *model.ListingFilters,
	limit, offset int,
) ([]model.Listing, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.Listing
	for _, l := range r.listings {
		if listingMatches(&l, filters) {
			matched = append(matched, l)
		}
	}

	total := len(matched)
	if offset >= total {
		return []model.Listing{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// listingMatches mirrors the WHERE clause built for PostgreSQL
func listingMatches(l *model.Listing, f *model.ListingFilters) bool {
	if f == nil {
		return true
	}
	if f.PriceMin != nil && (l.Price == nil || *l.Price < *f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && (l.Price == nil || *l.Price > *f.PriceMax) {
		return false
	}
	if f.Bedrooms != nil && (l.BedroomCount == nil || *l.BedroomCount != *f.Bedrooms) {
		return false
	}
	if f.PropertyType != nil && !equalFoldPtr(l.PropertyType, *f.PropertyType) {
		return false
	}
	if f.Location != nil {
		if l.Location == nil || !strings.Contains(strings.ToLower(*l.Location), strings.ToLower(*f.Location)) {
			return false
		}
	}
	if f.MessageType != nil && l.MessageType != *f.MessageType {
		return false
	}
	if f.PropertyStatus != nil && (l.PropertyStatus == nil || *l.PropertyStatus != *f.PropertyStatus) {
		return false
	}
	if f.FurnishingStatus != nil && (l.FurnishingStatus == nil || *l.FurnishingStatus != *f.FurnishingStatus) {
		return false
	}
	if len(f.SpecialFeatures) > 0 && !hasAnyFeature(l.SpecialFeatures, f.SpecialFeatures) {
		return false
	}
	return true
}

func equalFoldPtr(s *string, want string) bool {
	return s != nil && strings.EqualFold(*s, want)
}

func hasAnyFeature(features, requested []string) bool {
	for _, req := range requested {
		for _, feat := range features {
			if utils.FuzzyMatchFeature(req, feat) {
				return true
			}
		}
	}
	return false
}

func (r *MemoryListingRepository) GetListingByID(_ context.Context, listingID int64) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.listings {
		if r.listings[i].ID == listingID {
			l := r.listings[i]
			return &l, nil
		}
	}
	return nil, nil
}

// SimilarListings ranks by embedding cosine similarity when both listings carry one,
// otherwise by shared attributes
func (r *MemoryListingRepository) SimilarListings(_ context.Context, listingID int64, limit int) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var source *model.Listing
	for i := range r.listings {
		if r.listings[i].ID == listingID {
			source = &r.listings[i]
			break
		}
	}
	if source == nil {
		return []model.Listing{}, nil
	}

	type scored struct {
		listing model.Listing
		score   float64
	}
	candidates := make([]scored, 0, len(r.listings))
	for _, l := range r.listings {
		if l.ID == listingID {
			continue
		}
		candidates = append(candidates, scored{listing: l, score: similarity(source, &l)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]model.Listing, len(candidates))
	for i, c := range candidates {
		out[i] = c.listing
	}
	return out, nil
}

func similarity(a, b *model.Listing) float64 {
	va, vb := a.Embedding.Slice(), b.Embedding.Slice()
	if len(va) > 0 && len(va) == len(vb) {
		return 1 + cosine(va, vb)
	}

	score := 0.0
	if a.PropertyType != nil && equalFoldPtr(b.PropertyType, *a.PropertyType) {
		score += 0.25
	}
	if a.BedroomCount != nil && b.BedroomCount != nil && *a.BedroomCount == *b.BedroomCount {
		score += 0.25
	}
	if a.Location != nil && equalFoldPtr(b.Location, *a.Location) {
		score += 0.25
	}
	if a.MessageType == b.MessageType && a.Price != nil && b.Price != nil && *a.Price > 0 && *b.Price > 0 {
		score += 0.25 * math.Min(*a.Price, *b.Price) / math.Max(*a.Price, *b.Price)
	}
	return score
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (r *MemoryListingRepository) BatchUpdateEmbeddings(_ context.Context, items []model.EmbeddingItem) (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	success := 0
	var errors []string
	for _, item := range items {
		found := false
		for i := range r.listings {
			if r.listings[i].ID == item.ListingID {
				r.listings[i].Embedding = pgvector.NewVector(item.Embedding)
				found = true
				break
			}
		}
		if !found {
			errors = append(errors, fmt.Sprintf("listing_id %d: not found", item.ListingID))
			continue
		}
		success++
	}
	return success, errors
}

func (r *MemoryListingRepository) LogMatch(_ context.Context, entry model.MatchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, entry)
	return nil
}

func (r *MemoryListingRepository) LogFeedback(_ context.Context, sessionID string, listingID int64, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback[sessionID] = append(r.feedback[sessionID], fmt.Sprintf("%d:%s", listingID, action))
	return nil
}

// MatchLogs returns the matches logged so far
func (r *MemoryListingRepository) MatchLogs() []model.MatchLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.MatchLog, len(r.matches))
	copy(out, r.matches)
	return out
}
