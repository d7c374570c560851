package model

import (
	"encoding/json"
	"fmt"
)

// ControlType names the input widget a question is answered with
type ControlType string

const (
	ControlText               ControlType = "text"
	ControlSelect             ControlType = "select"
	ControlMultiSelect        ControlType = "multi-select"
	ControlSlider             ControlType = "slider"
	ControlRangeSlider        ControlType = "range-slider"
	ControlRadio              ControlType = "radio"
	ControlToggleGroup        ControlType = "toggle-group"
	ControlCommunitySelection ControlType = "community-selection"
	ControlLocationProximity  ControlType = "location-proximity"
	ControlTags               ControlType = "tags"
)

// Control is the control-specific half of a question. Exactly one concrete type
// exists per ControlType; callers switch on the concrete type.
type Control interface {
	Type() ControlType
	// ValidateAnswer checks a decoded JSON answer against the control's parameters
	ValidateAnswer(answer any) error
	isControl()
}

// Question is an immutable catalog entry
type Question struct {
	ID             string
	Text           string
	Label          string
	Required       bool
	HelpText       string
	MarketInsights string
	Control        Control
}

// Option is a choice of a select, radio, toggle group or proximity control
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// HistogramBin is one bar of the distribution shown behind a slider
type HistogramBin struct {
	Range    string  `json:"range"`
	Count    int     `json:"count"`
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
}

// PriceRange is expressed in crores
type PriceRange struct {
	MinCr float64 `json:"min_cr"`
	MaxCr float64 `json:"max_cr"`
}

type SizeRange struct {
	MinBHK int `json:"min_bhk"`
	MaxBHK int `json:"max_bhk"`
}

// Community is a gated community offered by the community-selection control
type Community struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ImageURL      string     `json:"image_url"`
	Neighborhood  string     `json:"neighborhood"`
	PropertyCount int        `json:"property_count"`
	PriceRange    PriceRange `json:"price_range"`
	SizeRange     SizeRange  `json:"size_range"`
	MatchScore    int        `json:"match_score"`
	Highlights    []string   `json:"highlights"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TextControl struct {
	Placeholder string
}

type SelectControl struct {
	Options []Option
}

type MultiSelectControl struct {
	Options []Option
}

type RadioControl struct {
	Options []Option
}

type ToggleGroupControl struct {
	Options []Option
}

type SliderControl struct {
	Min          float64
	Max          float64
	Step         float64
	Unit         string
	DefaultValue *float64
	Histogram    []HistogramBin
	ChartTitle   string
}

type RangeSliderControl struct {
	Min              float64
	Max              float64
	Step             float64
	Unit             string
	DefaultValue     *[2]float64
	RecommendedValue *[2]float64
	Histogram        []HistogramBin
	ChartTitle       string
}

type CommunitySelectionControl struct {
	Communities []Community
}

type LocationProximityControl struct {
	Options   []Option
	MapCenter *LatLng
	RadiusKm  float64
}

type TagsControl struct {
	Suggestions []string
	Placeholder string
}

func (TextControl) Type() ControlType               { return ControlText }
func (SelectControl) Type() ControlType             { return ControlSelect }
func (MultiSelectControl) Type() ControlType        { return ControlMultiSelect }
func (RadioControl) Type() ControlType              { return ControlRadio }
func (ToggleGroupControl) Type() ControlType        { return ControlToggleGroup }
func (SliderControl) Type() ControlType             { return ControlSlider }
func (RangeSliderControl) Type() ControlType        { return ControlRangeSlider }
func (CommunitySelectionControl) Type() ControlType { return ControlCommunitySelection }
func (LocationProximityControl) Type() ControlType  { return ControlLocationProximity }
func (TagsControl) Type() ControlType               { return ControlTags }

func (TextControl) isControl()               {}
func (SelectControl) isControl()             {}
func (MultiSelectControl) isControl()        {}
func (RadioControl) isControl()              {}
func (ToggleGroupControl) isControl()        {}
func (SliderControl) isControl()             {}
func (RangeSliderControl) isControl()        {}
func (CommunitySelectionControl) isControl() {}
func (LocationProximityControl) isControl()  {}
func (TagsControl) isControl()               {}

// ControlType returns the question's control kind, or "" for a question without a control
func (q *Question) ControlType() ControlType {
	if q == nil || q.Control == nil {
		return ""
	}
	return q.Control.Type()
}

// Unit returns the display unit of slider questions
func (q *Question) Unit() string {
	if q == nil {
		return ""
	}
	switch c := q.Control.(type) {
	case SliderControl:
		return c.Unit
	case RangeSliderControl:
		return c.Unit
	}
	return ""
}

// questionWire is the JSON shape shared with the broker backend and the web client
type questionWire struct {
	ID          string          `json:"id"`
	Question    string          `json:"question"`
	Label       string          `json:"label,omitempty"`
	ControlType ControlType     `json:"controlType"`
	Required    bool            `json:"required"`
	HelpText    string          `json:"helpText,omitempty"`
	Data        *questionData   `json:"data,omitempty"`
}

type questionData struct {
	Histogram        []HistogramBin  `json:"histogram,omitempty"`
	ChartTitle       string          `json:"chartTitle,omitempty"`
	Options          []Option        `json:"options,omitempty"`
	Communities      []Community     `json:"communities,omitempty"`
	Min              *float64        `json:"min,omitempty"`
	Max              *float64        `json:"max,omitempty"`
	Step             *float64        `json:"step,omitempty"`
	DefaultValue     json.RawMessage `json:"defaultValue,omitempty"`
	Unit             string          `json:"unit,omitempty"`
	MapCenter        *LatLng         `json:"mapCenter,omitempty"`
	RadiusKm         *float64        `json:"radiusKm,omitempty"`
	Suggestions      []string        `json:"suggestions,omitempty"`
	Placeholder      string          `json:"placeholder,omitempty"`
	MarketInsights   string          `json:"marketInsights,omitempty"`
	RecommendedValue json.RawMessage `json:"recommendedValue,omitempty"`
}

// MarshalJSON writes the {controlType, data} wire form
func (q Question) MarshalJSON() ([]byte, error) {
	if q.Control == nil {
		return nil, fmt.Errorf("question %q has no control", q.ID)
	}

	data := &questionData{MarketInsights: q.MarketInsights}
	switch c := q.Control.(type) {
	case TextControl:
		data.Placeholder = c.Placeholder
	case SelectControl:
		data.Options = c.Options
	case MultiSelectControl:
		data.Options = c.Options
	case RadioControl:
		data.Options = c.Options
	case ToggleGroupControl:
		data.Options = c.Options
	case SliderControl:
		data.Min, data.Max, data.Step = floatPtr(c.Min), floatPtr(c.Max), floatPtr(c.Step)
		data.Unit = c.Unit
		data.Histogram = c.Histogram
		data.ChartTitle = c.ChartTitle
		if c.DefaultValue != nil {
			data.DefaultValue = mustJSON(*c.DefaultValue)
		}
	case RangeSliderControl:
		data.Min, data.Max, data.Step = floatPtr(c.Min), floatPtr(c.Max), floatPtr(c.Step)
		data.Unit = c.Unit
		data.Histogram = c.Histogram
		data.ChartTitle = c.ChartTitle
		if c.DefaultValue != nil {
			data.DefaultValue = mustJSON(c.DefaultValue[:])
		}
		if c.RecommendedValue != nil {
			data.RecommendedValue = mustJSON(c.RecommendedValue[:])
		}
	case CommunitySelectionControl:
		data.Communities = c.Communities
	case LocationProximityControl:
		data.Options = c.Options
		data.MapCenter = c.MapCenter
		if c.RadiusKm > 0 {
			data.RadiusKm = floatPtr(c.RadiusKm)
		}
	case TagsControl:
		data.Suggestions = c.Suggestions
		data.Placeholder = c.Placeholder
	default:
		return nil, fmt.Errorf("question %q: unsupported control %T", q.ID, q.Control)
	}

	return json.Marshal(questionWire{
		ID:          q.ID,
		Question:    q.Text,
		Label:       q.Label,
		ControlType: q.Control.Type(),
		Required:    q.Required,
		HelpText:    q.HelpText,
		Data:        data,
	})
}

// UnmarshalJSON reads the {controlType, data} wire form. Unknown control types are rejected.
func (q *Question) UnmarshalJSON(b []byte) error {
	var w questionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data := w.Data
	if data == nil {
		data = &questionData{}
	}

	var control Control
	switch w.ControlType {
	case ControlText:
		control = TextControl{Placeholder: data.Placeholder}
	case ControlSelect:
		control = SelectControl{Options: data.Options}
	case ControlMultiSelect:
		control = MultiSelectControl{Options: data.Options}
	case ControlRadio:
		control = RadioControl{Options: data.Options}
	case ControlToggleGroup:
		control = ToggleGroupControl{Options: data.Options}
	case ControlSlider:
		c := SliderControl{
			Min: derefFloat(data.Min), Max: derefFloat(data.Max), Step: derefFloat(data.Step),
			Unit: data.Unit, Histogram: data.Histogram, ChartTitle: data.ChartTitle,
		}
		var v float64
		if len(data.DefaultValue) > 0 && json.Unmarshal(data.DefaultValue, &v) == nil {
			c.DefaultValue = &v
		}
		control = c
	case ControlRangeSlider:
		c := RangeSliderControl{
			Min: derefFloat(data.Min), Max: derefFloat(data.Max), Step: derefFloat(data.Step),
			Unit: data.Unit, Histogram: data.Histogram, ChartTitle: data.ChartTitle,
		}
		c.DefaultValue = decodePair(data.DefaultValue)
		c.RecommendedValue = decodePair(data.RecommendedValue)
		control = c
	case ControlCommunitySelection:
		control = CommunitySelectionControl{Communities: data.Communities}
	case ControlLocationProximity:
		control = LocationProximityControl{Options: data.Options, MapCenter: data.MapCenter, RadiusKm: derefFloat(data.RadiusKm)}
	case ControlTags:
		control = TagsControl{Suggestions: data.Suggestions, Placeholder: data.Placeholder}
	default:
		return fmt.Errorf("question %q: unknown control type %q", w.ID, w.ControlType)
	}

	*q = Question{
		ID:             w.ID,
		Text:           w.Question,
		Label:          w.Label,
		Required:       w.Required,
		HelpText:       w.HelpText,
		MarketInsights: data.MarketInsights,
		Control:        control,
	}
	return nil
}

func decodePair(raw json.RawMessage) *[2]float64 {
	if len(raw) == 0 {
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return nil
	}
	return &[2]float64{pair[0], pair[1]}
}

func floatPtr(v float64) *float64 {
	return &v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
