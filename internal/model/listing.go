package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// RupeesPerCrore converts budget answers (crores) to listing prices (rupees)
const RupeesPerCrore = 10_000_000

// Listing represents a property listing parsed from a broker message
type Listing struct {
	ID               int64           `json:"id" db:"id"`
	SourceMessageID  *string         `json:"source_message_id,omitempty" db:"source_message_id"`
	MessageDate      *time.Time      `json:"message_date,omitempty" db:"message_date"`
	AgentName        *string         `json:"agent_name,omitempty" db:"agent_name"`
	AgentContact     *string         `json:"agent_contact,omitempty" db:"agent_contact"`
	CompanyName      *string         `json:"company_name,omitempty" db:"company_name"`
	RawMessage       string          `json:"raw_message" db:"raw_message"`
	MessageType      string          `json:"message_type" db:"message_type"` // supply_sale, supply_rent, demand_buy, demand_rent
	PropertyType     *string         `json:"property_type,omitempty" db:"property_type"`
	AreaSqft         *float64        `json:"area_sqft,omitempty" db:"area_sqft"`
	BedroomCount     *int            `json:"bedroom_count,omitempty" db:"bedroom_count"`
	Price            *float64        `json:"price,omitempty" db:"price"` // Rupees
	PriceText        *string         `json:"price_text,omitempty" db:"price_text"`
	Location         *string         `json:"location,omitempty" db:"location"`
	ProjectName      *string         `json:"project_name,omitempty" db:"project_name"`
	FurnishingStatus *string         `json:"furnishing_status,omitempty" db:"furnishing_status"`
	PropertyStatus   *string         `json:"property_status,omitempty" db:"property_status"`
	FacingDirection  *string         `json:"facing_direction,omitempty" db:"facing_direction"`
	ParkingCount     *int            `json:"parking_count,omitempty" db:"parking_count"`
	SpecialFeatures  JSONArray       `json:"special_features,omitempty" db:"special_features"`
	ImageURL         *string         `json:"image_url,omitempty" db:"image_url"`
	Latitude         *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64        `json:"longitude,omitempty" db:"longitude"`
	Embedding        pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// ListingMatch represents a matched listing with its ranking metadata
type ListingMatch struct {
	Listing
	Score          float64  `json:"score"`
	MatchedReasons []string `json:"matched_reasons"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
