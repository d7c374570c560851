package service

import (
	"math"
	"sort"
	"time"

	"property-intake/internal/model"
	"property-intake/internal/utils"
)

// Match reason constants
const (
	ReasonBedroomsMatch     = "Bedrooms match"
	ReasonPropertyTypeMatch = "Property type match"
	ReasonLocationMatch     = "Location match"
	ReasonPriceMatch        = "Price within budget"
	ReasonFurnishingMatch   = "Furnishing match"
	ReasonStatusMatch       = "Status match"
	ReasonFeaturesMatch     = "Special features match"
	ReasonParking           = "Parking available"
	ReasonNewlyListed       = "Newly listed"
	ReasonGeneralMatch      = "General match"
)

// Ranker handles ranking and scoring of matched listings
type Ranker struct {
	weightCriteria float64
	weightPrice    float64
	weightRecency  float64
	now            func() time.Time
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightCriteria, weightPrice, weightRecency float64) *Ranker {
	return &Ranker{
		weightCriteria: weightCriteria,
		weightPrice:    weightPrice,
		weightRecency:  weightRecency,
		now:            time.Now,
	}
}

// RankResults scores and ranks listings against the filters they were fetched with
func (r *Ranker) RankResults(listings []model.Listing, filters *model.ListingFilters) []model.ListingMatch {
	results := make([]model.ListingMatch, 0, len(listings))

	for _, listing := range listings {
		criteriaScore := r.calculateCriteriaScore(listing, filters)
		priceScore := r.calculatePriceScore(listing.Price, filters)
		recencyScore := r.calculateRecencyScore(listing.CreatedAt)

		results = append(results, model.ListingMatch{
			Listing: listing,
			Score: (r.weightCriteria * criteriaScore) +
				(r.weightPrice * priceScore) +
				(r.weightRecency * recencyScore),
			MatchedReasons: r.generateMatchedReasons(listing, filters, priceScore),
		})
	}

	// Sort by score descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// calculateCriteriaScore is the share of requested special features the listing carries.
// Hard filters are already satisfied by the query.
func (r *Ranker) calculateCriteriaScore(listing model.Listing, filters *model.ListingFilters) float64 {
	if filters == nil || len(filters.SpecialFeatures) == 0 {
		return 1.0
	}
	matched := 0
	for _, requested := range filters.SpecialFeatures {
		for _, feature := range listing.SpecialFeatures {
			if utils.FuzzyMatchFeature(requested, feature) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(filters.SpecialFeatures))
}

// calculatePriceScore calculates how well the price matches the budget
func (r *Ranker) calculatePriceScore(price *float64, filters *model.ListingFilters) float64 {
	if price == nil {
		return 0.5 // Neutral score if no price
	}

	if filters == nil || (filters.PriceMin == nil && filters.PriceMax == nil) {
		return 1.0
	}

	actualPrice := *price

	if filters.PriceMin != nil && filters.PriceMax != nil {
		minPrice := *filters.PriceMin
		maxPrice := *filters.PriceMax

		if actualPrice < minPrice || actualPrice > maxPrice {
			return 0.0
		}

		// Within range, score based on distance from midpoint
		midpoint := (minPrice + maxPrice) / 2
		priceRange := maxPrice - minPrice
		if priceRange == 0 {
			return 1.0
		}

		score := 1.0 - (math.Abs(actualPrice-midpoint) / (priceRange / 2))
		if score < 0 {
			score = 0
		}
		return score
	}

	if filters.PriceMin != nil {
		if actualPrice < *filters.PriceMin {
			return 0.0
		}
		return 1.0
	}

	if actualPrice > *filters.PriceMax {
		return 0.0
	}
	// Closer to max is better
	return math.Min(actualPrice / *filters.PriceMax, 1.0)
}

// calculateRecencyScore decays with listing age: ~0.74 after 30 days, ~0.41 after 90
func (r *Ranker) calculateRecencyScore(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 0.5 // Neutral score if no date
	}

	daysSinceListed := r.now().Sub(createdAt).Hours() / 24
	score := math.Exp(-0.01 * daysSinceListed)

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// generateMatchedReasons generates human-readable reasons for why this listing matched
func (r *Ranker) generateMatchedReasons(
	listing model.Listing,
	filters *model.ListingFilters,
	priceScore float64,
) []string {
	reasons := []string{}

	if filters != nil {
		if filters.Bedrooms != nil && listing.BedroomCount != nil && *listing.BedroomCount == *filters.Bedrooms {
			reasons = append(reasons, ReasonBedroomsMatch)
		}
		if filters.PropertyType != nil && listing.PropertyType != nil {
			reasons = append(reasons, ReasonPropertyTypeMatch)
		}
		if filters.Location != nil && listing.Location != nil {
			reasons = append(reasons, ReasonLocationMatch)
		}
		if (filters.PriceMin != nil || filters.PriceMax != nil) && priceScore > 0.8 {
			reasons = append(reasons, ReasonPriceMatch)
		}
		if filters.FurnishingStatus != nil && listing.FurnishingStatus != nil {
			reasons = append(reasons, ReasonFurnishingMatch)
		}
		if filters.PropertyStatus != nil && listing.PropertyStatus != nil {
			reasons = append(reasons, ReasonStatusMatch)
		}
		if len(filters.SpecialFeatures) > 0 && r.calculateCriteriaScore(listing, filters) > 0 {
			reasons = append(reasons, ReasonFeaturesMatch)
		}
	}

	if listing.ParkingCount != nil && *listing.ParkingCount > 0 {
		reasons = append(reasons, ReasonParking)
	}

	if !listing.CreatedAt.IsZero() && r.now().Sub(listing.CreatedAt).Hours()/24 < 7 {
		reasons = append(reasons, ReasonNewlyListed)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}

	return reasons
}
