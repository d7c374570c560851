package model

// ParsedIntent represents the criteria extracted from a free-text chat message
type ParsedIntent struct {
	Criteria          IntentCriteria `json:"criteria"`
	Confidence        float64        `json:"confidence"`
	TriggeredKeywords []string       `json:"triggeredKeywords"`
	RawMessage        string         `json:"rawMessage"`
}

// IntentCriteria holds the slots the keyword parser can fill
type IntentCriteria struct {
	BHK          *int    `json:"bhk,omitempty"`
	Location     *string `json:"location,omitempty"`
	PropertyType *string `json:"property_type,omitempty"`
	ReqType      *string `json:"req_type,omitempty"`
}

// AsCriteria lifts the parsed slots into conversation criteria
func (c IntentCriteria) AsCriteria() Criteria {
	return Criteria{
		BHK:          c.BHK,
		Location:     c.Location,
		PropertyType: c.PropertyType,
		ReqType:      c.ReqType,
	}.Clone()
}

// IntentParseRequest is the body of POST /intent/parse
type IntentParseRequest struct {
	Message string `json:"message" binding:"required"`
}

// IntentParseResponse pairs the parse result with the acknowledgment the chat would show
type IntentParseResponse struct {
	Intent          ParsedIntent `json:"intent"`
	Acknowledgment  string       `json:"acknowledgment"`
	NextQuestion    *Question    `json:"nextQuestion,omitempty"`
	CatalogQuestion int          `json:"catalogQuestions"`
}
