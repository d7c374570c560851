package repository

import (
	"context"

	"property-intake/internal/model"
)

// ListingRepository is the listing storage used for session matches
type ListingRepository interface {
	SearchWithFilters(ctx context.Context, filters *model.ListingFilters, limit, offset int) ([]model.Listing, int, error)
	GetListingByID(ctx context.Context, listingID int64) (*model.Listing, error)
	SimilarListings(ctx context.Context, listingID int64, limit int) ([]model.Listing, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	LogMatch(ctx context.Context, entry model.MatchLog) error
	LogFeedback(ctx context.Context, sessionID string, listingID int64, action string) error
}

var (
	_ ListingRepository = (*PostgresRepository)(nil)
	_ ListingRepository = (*MemoryListingRepository)(nil)
)
