package model

// AggregateDistributionKey holds the locality-wide aggregate in a distribution response
const AggregateDistributionKey = "All"

type DistributionBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Distribution is the market breakdown of one locality
type Distribution struct {
	Price        []DistributionBucket `json:"price"`
	Area         []DistributionBucket `json:"area"`
	PropertyType []DistributionBucket `json:"propertyType"`
	Bedroom      []DistributionBucket `json:"bedroom"`
}

// DistributionResponse is the envelope returned by /api/distributions/localities
type DistributionResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count,omitempty"`
	Data    struct {
		Distributions map[string]Distribution `json:"distributions"`
	} `json:"data"`
	Message string `json:"message"`
}

// LocalityDistributions is what the service hands to clients
type LocalityDistributions struct {
	Location      string                  `json:"location"`
	Aggregate     *Distribution           `json:"aggregate,omitempty"`
	Distributions map[string]Distribution `json:"distributions"`
	Count         int                     `json:"count"`
}
