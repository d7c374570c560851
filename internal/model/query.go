package model

// ListingFilters represents structured listing filters derived from chat criteria
type ListingFilters struct {
	PriceMin         *float64 `json:"price_min,omitempty"` // Rupees
	PriceMax         *float64 `json:"price_max,omitempty"` // Rupees
	Bedrooms         *int     `json:"bedrooms,omitempty"`
	PropertyType     *string  `json:"property_type,omitempty"`
	Location         *string  `json:"location,omitempty"`
	MessageType      *string  `json:"message_type,omitempty"`
	PropertyStatus   *string  `json:"property_status,omitempty"`
	FurnishingStatus *string  `json:"furnishing_status,omitempty"`
	SpecialFeatures  []string `json:"special_features,omitempty"` // 至少包含其一
}

// MatchOptions represents paging options
type MatchOptions struct {
	TopK   int `json:"top_k"`
	Offset int `json:"offset"`
}

// MatchResponse represents the listings matched to a chat session
type MatchResponse struct {
	SessionID  string         `json:"session_id"`
	Criteria   Criteria       `json:"criteria"`
	Filters    ListingFilters `json:"filters"`
	Results    []ListingMatch `json:"results"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	HasMore    bool           `json:"has_more"`
	Took       int64          `json:"took_ms"` // Response time in milliseconds
}

// SimilarResponse represents the nearest neighbours of a listing
type SimilarResponse struct {
	ListingID int64          `json:"listing_id"`
	Results   []ListingMatch `json:"results"`
}

// MatchLog records one listing match served to a chat session
type MatchLog struct {
	SessionID      string         `json:"session_id" db:"session_id"`
	Criteria       Criteria       `json:"criteria"`
	Filters        ListingFilters `json:"filters"`
	ResultCount    int            `json:"result_count" db:"result_count"`
	ListingIDs     []int64        `json:"returned_listing_ids"`
	ResponseTimeMs int            `json:"response_time_ms" db:"response_time_ms"`
}

// FeedbackRequest represents user feedback on a matched listing
type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ListingID int64  `json:"listing_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents the feedback submission response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single embedding with listing info
type EmbeddingItem struct {
	ListingID int64     `json:"listing_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Text      string    `json:"text,omitempty"` // The text used to generate embedding
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// SubmitAnswerBody is the body of POST /chat/sessions/:id/answers
type SubmitAnswerBody struct {
	MessageID string `json:"message_id" binding:"required"`
	Answer    any    `json:"answer"`
}

// SendMessageBody is the body of POST /chat/sessions/:id/messages
type SendMessageBody struct {
	Content string `json:"content"`
}

// CreateLeadBody is the body of POST /leads
type CreateLeadBody struct {
	Query string         `json:"query"`
	Extra map[string]any `json:"extra,omitempty"`
}
