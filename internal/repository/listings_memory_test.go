package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intake/internal/model"
)

func listingIDs(listings []model.Listing) []int64 {
	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}

func strPtr(s string) *string       { return &s }
func intPtr(i int) *int             { return &i }
func float64Ptr(f float64) *float64 { return &f }

func newSeededRepo(t *testing.T) *MemoryListingRepository {
	t.Helper()
	repo, err := NewMemoryListingRepository()
	require.NoError(t, err)
	return repo
}

func TestMemoryListingRepository_SearchWithFilters(t *testing.T) {
	repo := newSeededRepo(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters *model.ListingFilters
		want    []int64
	}{
		{
			name: "3 BHK sale in Indiranagar within budget",
			filters: &model.ListingFilters{
				PriceMin:    float64Ptr(1.0 * model.RupeesPerCrore),
				PriceMax:    float64Ptr(2.0 * model.RupeesPerCrore),
				Bedrooms:    intPtr(3),
				Location:    strPtr("indiranagar"),
				MessageType: strPtr("supply_sale"),
			},
			want: []int64{10, 1},
		},
		{
			name: "3 BHK rent in Indiranagar",
			filters: &model.ListingFilters{
				Bedrooms:    intPtr(3),
				Location:    strPtr("Indiranagar"),
				MessageType: strPtr("supply_rent"),
			},
			want: []int64{2},
		},
		{
			name:    "clubhouse with any spelling",
			filters: &model.ListingFilters{SpecialFeatures: []string{"clubhouse"}},
			want:    []int64{9, 4, 3},
		},
		{
			name: "fully furnished apartments",
			filters: &model.ListingFilters{
				PropertyType:     strPtr("Apartment"),
				FurnishingStatus: strPtr("fully_furnished"),
			},
			want: []int64{8, 4, 2},
		},
		{
			name:    "villa has no matches",
			filters: &model.ListingFilters{PropertyType: strPtr("villa")},
			want:    []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.SearchWithFilters(ctx, tt.filters, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			assert.Equal(t, tt.want, listingIDs(got))
		})
	}
}

func TestMemoryListingRepository_Paging(t *testing.T) {
	repo := newSeededRepo(t)
	ctx := context.Background()

	page, total, err := repo.SearchWithFilters(ctx, nil, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, []int64{10, 9, 8}, listingIDs(page))

	page, _, err = repo.SearchWithFilters(ctx, nil, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, listingIDs(page))

	page, total, err = repo.SearchWithFilters(ctx, nil, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Empty(t, page)
}

func TestMemoryListingRepository_GetListingByID(t *testing.T) {
	repo := newSeededRepo(t)

	l, err := repo.GetListingByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "HAL 3rd Stage", *l.Location)
	assert.Contains(t, []string(l.SpecialFeatures), "swimming_pool")
	require.NotNil(t, l.ImageURL)

	missing, err := repo.GetListingByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryListingRepository_SimilarByAttributes(t *testing.T) {
	repo := newSeededRepo(t)

	similar, err := repo.SimilarListings(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 10, 9}, listingIDs(similar))

	none, err := repo.SimilarListings(context.Background(), 99, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryListingRepository_SimilarByEmbedding(t *testing.T) {
	repo := newSeededRepo(t)
	ctx := context.Background()

	success, errs := repo.BatchUpdateEmbeddings(ctx, []model.EmbeddingItem{
		{ListingID: 1, Embedding: []float32{1, 0}},
		{ListingID: 5, Embedding: []float32{1, 0.1}},
		{ListingID: 7, Embedding: []float32{0, 1}},
		{ListingID: 99, Embedding: []float32{1, 1}},
	})
	assert.Equal(t, 3, success)
	assert.Equal(t, []string{"listing_id 99: not found"}, errs)

	similar, err := repo.SimilarListings(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, listingIDs(similar))
}

func TestMemoryListingRepository_Logs(t *testing.T) {
	repo := newSeededRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.LogMatch(ctx, model.MatchLog{SessionID: "s-1", ResultCount: 2, ListingIDs: []int64{10, 1}}))
	require.NoError(t, repo.LogFeedback(ctx, "s-1", 10, "click"))

	logs := repo.MatchLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, []int64{10, 1}, logs[0].ListingIDs)
}

func TestBuildListingWhere(t *testing.T) {
	where, args, next := buildListingWhere(&model.ListingFilters{
		PriceMax:        float64Ptr(20000000),
		Bedrooms:        intPtr(3),
		Location:        strPtr("Indiranagar"),
		SpecialFeatures: []string{"gym"},
	})

	assert.Equal(t,
		"1=1 AND price <= $1 AND bedroom_count = $2 AND location ILIKE $3 AND "+
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(special_features) elem WHERE "+
			"elem ILIKE $4 OR elem ILIKE $5 OR elem ILIKE $6 OR elem ILIKE $7)",
		where)
	assert.Equal(t, []interface{}{20000000.0, 3, "%Indiranagar%", "%gym%", "%gymnasium%", "%fitness%", "%fitness_center%"}, args)
	assert.Equal(t, 8, next)

	where, args, next = buildListingWhere(nil)
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
}
