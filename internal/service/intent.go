package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"property-intake/internal/model"
)

// intentFields is the number of slots the parser can fill; confidence is matched/intentFields
const intentFields = 4

var bhkPattern = regexp.MustCompile(`(\d+)\s*(bhk|bedroom|bed|br)`)

// knownLocations is scanned in order, the first hit wins
var knownLocations = []string{
	"indiranagar",
	"ulsoor",
	"domlur",
	"jeevan bhiomagar",
	"kodihalli",
	"koramangala",
	"whitefield",
	"hsr layout",
	"hsr",
	"bellandur",
	"electronic city",
	"kannur",
}

// propertyTypeRules are checked in priority order
var propertyTypeRules = []struct {
	value    string
	keywords []string
}{
	{"villa", []string{"villa"}},
	{"apartment", []string{"apartment", "apt", "flat"}},
	{"independent_house", []string{"independent house", "house"}},
	{"penthouse", []string{"penthouse"}},
}

// IntentParser extracts search criteria from free-form chat messages with keyword rules
type IntentParser struct{}

// NewIntentParser creates a new intent parser
func NewIntentParser() *IntentParser {
	return &IntentParser{}
}

// Parse never fails; a message with no recognisable criteria yields confidence 0
func (p *IntentParser) Parse(message string) *model.ParsedIntent {
	lower := strings.ToLower(message)
	result := &model.ParsedIntent{
		TriggeredKeywords: []string{},
		RawMessage:        message,
	}

	if m := bhkPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Criteria.BHK = &n
			result.TriggeredKeywords = append(result.TriggeredKeywords, "bhk")
		}
	}

	for _, loc := range knownLocations {
		if strings.Contains(lower, loc) {
			name := titleCase(loc)
			result.Criteria.Location = &name
			result.TriggeredKeywords = append(result.TriggeredKeywords, "location")
			break
		}
	}

rules:
	for _, rule := range propertyTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				value := rule.value
				result.Criteria.PropertyType = &value
				result.TriggeredKeywords = append(result.TriggeredKeywords, "property_type")
				break rules
			}
		}
	}

	var reqType string
	if strings.Contains(lower, "rent") {
		reqType = "rent"
	} else if strings.Contains(lower, "buy") {
		reqType = "buy"
	}
	if reqType != "" {
		result.Criteria.ReqType = &reqType
		result.TriggeredKeywords = append(result.TriggeredKeywords, "req_type")
	}

	if n := len(result.TriggeredKeywords); n > 0 {
		result.Confidence = float64(n) / intentFields
		if result.Confidence > 1 {
			result.Confidence = 1
		}
	}
	return result
}

// AcknowledgmentMessage turns a parse result into the reply shown before the next question
func AcknowledgmentMessage(intent *model.ParsedIntent) string {
	if intent == nil || intent.Confidence == 0 {
		return "I'd love to help you find your dream property! Could you tell me more about what you're looking for?"
	}

	var parts []string
	c := intent.Criteria
	if c.BHK != nil && *c.BHK != 0 {
		parts = append(parts, fmt.Sprintf("a %dBHK", *c.BHK))
	}
	if c.PropertyType != nil && *c.PropertyType != "" {
		parts = append(parts, *c.PropertyType)
	}
	if c.Location != nil && *c.Location != "" {
		parts = append(parts, "in "+*c.Location)
	}
	if c.ReqType != nil && *c.ReqType != "" {
		parts = append(parts, "to "+*c.ReqType)
	}
	criteria := strings.Join(parts, " ")

	switch {
	case intent.Confidence > 0.7:
		return fmt.Sprintf("Great! Looking for %s. Let me ask a few more questions to narrow down your search.", criteria)
	case intent.Confidence > 0.3:
		return fmt.Sprintf("Got it! So you want %s. Let me get a few more details.", criteria)
	default:
		return "I found some details from your message. Let me ask you some follow-up questions."
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
