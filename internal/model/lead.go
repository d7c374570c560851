package model

// PropertyCriteria is the property half of a lead's extracted criteria
type PropertyCriteria struct {
	BHK              *int     `json:"bhk"`
	BudgetMin        *float64 `json:"budget_min"`
	BudgetMax        *float64 `json:"budget_max"`
	AreaSqftMin      *float64 `json:"area_sqft_min"`
	AreaSqftMax      *float64 `json:"area_sqft_max"`
	PropertyType     *string  `json:"property_type"`
	PropertyAge      *string  `json:"property_age"`
	Location         string   `json:"location"`
	ReqType          string   `json:"req_type"` // demand_buy, demand_rent, supply_sale, supply_rent
	Locations        []string `json:"locations"`
	PlotSizeMin      *float64 `json:"plot_size_min"`
	PlotSizeMax      *float64 `json:"plot_size_max"`
	BuiltUpAreaMin   *float64 `json:"built_up_area_min"`
	BuiltUpAreaMax   *float64 `json:"built_up_area_max"`
	PropertyStatus   *string  `json:"property_status"`
	FurnishingStatus *string  `json:"furnishing_status"`
	SpecialFeatures  []string `json:"special_features"`
}

type ProximityCriteria struct {
	NearSchool       bool `json:"near_school"`
	NearAirport      bool `json:"near_airport"`
	NearHospital     bool `json:"near_hospital"`
	NearShoppingMall bool `json:"near_shopping_mall"`
}

type UserJourney struct {
	PossessionTimeline *string  `json:"possession_timeline"`
	TimeInMarket       *string  `json:"time_in_market"`
	AgentsContacted    *int     `json:"agents_contacted"`
	WorkLocations      []string `json:"work_locations"`
}

type LeadCriteria struct {
	Property    PropertyCriteria  `json:"property"`
	Proximity   ProximityCriteria `json:"proximity"`
	UserJourney UserJourney       `json:"user_journey"`
}

// LLMJSON is the classifier output attached to a parsed broker message
type LLMJSON struct {
	SplitIndex        *int   `json:"split_index"`
	MessageType       string `json:"message_type"`
	SplitFromOriginal bool   `json:"split_from_original"`
}

// MatchedProperty is a listing the broker backend matched to a lead
type MatchedProperty struct {
	ID               string   `json:"id"`
	SourceMessageID  *string  `json:"source_message_id"`
	MessageDate      string   `json:"message_date"`
	AgentContact     *string  `json:"agent_contact"`
	AgentName        *string  `json:"agent_name"`
	CompanyName      *string  `json:"company_name"`
	RawMessage       string   `json:"raw_message"`
	MessageType      string   `json:"message_type"`
	PropertyType     string   `json:"property_type"`
	AreaSqft         float64  `json:"area_sqft"`
	BedroomCount     int      `json:"bedroom_count"`
	Price            float64  `json:"price"`
	PriceText        string   `json:"price_text"`
	Location         string   `json:"location"`
	ProjectName      *string  `json:"project_name"`
	FurnishingStatus *string  `json:"furnishing_status"`
	ParkingCount     *int     `json:"parking_count"`
	ParkingText      *string  `json:"parking_text"`
	FacingDirection  *string  `json:"facing_direction"`
	SpecialFeatures  []string `json:"special_features"`
	LLMJSON          LLMJSON  `json:"llm_json"`
	CreatedAt        string   `json:"created_at"`
	SenderName       string   `json:"sender_name"`
}

type NearbyLocality struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}

// Lead is a requirement registered with the broker backend together with its matches
type Lead struct {
	LeadID            string            `json:"lead_id"`
	ID                string            `json:"id,omitempty"`
	Query             string            `json:"query"`
	ExtractedCriteria LeadCriteria      `json:"extracted_criteria"`
	MissingCriteria   []string          `json:"missing_criteria"`
	MatchedProperties []MatchedProperty `json:"matched_properties"`
	NearbyLocalities  []NearbyLocality  `json:"nearby_localities"`
	CreatedAt         string            `json:"created_at,omitempty"`
	UpdatedAt         string            `json:"updated_at,omitempty"`
}

// CreateLeadRequest carries the free-text requirement plus any extra fields the caller supplies
type CreateLeadRequest struct {
	Query string         `json:"query"`
	Extra map[string]any `json:"-"`
}

// Body flattens Extra next to query for the backend
func (r CreateLeadRequest) Body() map[string]any {
	body := make(map[string]any, len(r.Extra)+1)
	for k, v := range r.Extra {
		body[k] = v
	}
	body["query"] = r.Query
	return body
}
