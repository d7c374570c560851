package service

import (
	"testing"

	"property-intake/internal/model"
)

func TestIntentParser_Parse(t *testing.T) {
	parser := NewIntentParser()

	tests := []struct {
		name         string
		message      string
		bhk          *int
		location     *string
		propertyType *string
		reqType      *string
		confidence   float64
	}{
		{
			name:         "Full criteria",
			message:      "3BHK apartment in Indiranagar for rent",
			bhk:          intPtr(3),
			location:     strPtr("Indiranagar"),
			propertyType: strPtr("apartment"),
			reqType:      strPtr("rent"),
			confidence:   1.0,
		},
		{
			name:       "Greeting",
			message:    "hello",
			confidence: 0,
		},
		{
			name:         "Bedroom spelling and multi-word location",
			message:      "Need a 4 bedroom villa near HSR Layout",
			bhk:          intPtr(4),
			location:     strPtr("Hsr Layout"),
			propertyType: strPtr("villa"),
			confidence:   0.75,
		},
		{
			name:         "Villa beats apartment",
			message:      "villa or apartment, want to buy",
			propertyType: strPtr("villa"),
			reqType:      strPtr("buy"),
			confidence:   0.5,
		},
		{
			name:         "Independent house",
			message:      "independent house in whitefield",
			location:     strPtr("Whitefield"),
			propertyType: strPtr("independent_house"),
			confidence:   0.5,
		},
		{
			name:       "Rent beats buy",
			message:    "buy or rent, not sure",
			reqType:    strPtr("rent"),
			confidence: 0.25,
		},
		{
			name:       "Gazetteer order",
			message:    "koramangala or indiranagar",
			location:   strPtr("Indiranagar"),
			confidence: 0.25,
		},
		{
			name:       "Empty message",
			message:    "",
			confidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.message)

			if result == nil {
				t.Fatal("Expected result to be non-nil")
			}
			if result.RawMessage != tt.message {
				t.Errorf("RawMessage = %q, want %q", result.RawMessage, tt.message)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("Confidence = %.2f, want %.2f", result.Confidence, tt.confidence)
			}
			checkIntPtr(t, "bhk", result.Criteria.BHK, tt.bhk)
			checkStrPtr(t, "location", result.Criteria.Location, tt.location)
			checkStrPtr(t, "property_type", result.Criteria.PropertyType, tt.propertyType)
			checkStrPtr(t, "req_type", result.Criteria.ReqType, tt.reqType)
			if want := int(tt.confidence * intentFields); len(result.TriggeredKeywords) != want {
				t.Errorf("TriggeredKeywords = %v, want %d entries", result.TriggeredKeywords, want)
			}
		})
	}
}

func TestAcknowledgmentMessage(t *testing.T) {
	parser := NewIntentParser()

	tests := []struct {
		message string
		want    string
	}{
		{
			message: "hello",
			want:    "I'd love to help you find your dream property! Could you tell me more about what you're looking for?",
		},
		{
			message: "3BHK apartment in Indiranagar for rent",
			want:    "Great! Looking for a 3BHK apartment in Indiranagar to rent. Let me ask a few more questions to narrow down your search.",
		},
		{
			message: "villa in whitefield",
			want:    "Got it! So you want villa in Whitefield. Let me get a few more details.",
		},
		{
			message: "something to buy",
			want:    "I found some details from your message. Let me ask you some follow-up questions.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := AcknowledgmentMessage(parser.Parse(tt.message))
			if got != tt.want {
				t.Errorf("AcknowledgmentMessage() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := AcknowledgmentMessage(nil); got == "" {
		t.Error("Expected a clarifying prompt for a nil intent")
	}
}

func checkIntPtr(t *testing.T, field string, got, want *int) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s = %d, want %d", field, *got, *want)
	}
}

func checkStrPtr(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}

// Helper functions
func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func float64Ptr(v float64) *float64 {
	return &v
}

func criteriaOf(bhk int, location string) model.Criteria {
	c := model.Criteria{}
	if bhk > 0 {
		c.BHK = intPtr(bhk)
	}
	if location != "" {
		c.Location = strPtr(location)
	}
	return c
}
