package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAnswer is returned when an answer does not fit its question's control
var ErrInvalidAnswer = errors.New("invalid answer")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAnswer, fmt.Sprintf(format, args...))
}

// ValidateAnswer checks answer against the question's control
func (q *Question) ValidateAnswer(answer any) error {
	if q == nil || q.Control == nil {
		return invalid("question has no control")
	}
	if answer == nil {
		return invalid("%s: answer is required", q.ID)
	}
	if err := q.Control.ValidateAnswer(answer); err != nil {
		return fmt.Errorf("%s: %w", q.ID, err)
	}
	return nil
}

func (c TextControl) ValidateAnswer(answer any) error {
	s, ok := answer.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return invalid("expected non-empty text")
	}
	return nil
}

func (c SelectControl) ValidateAnswer(answer any) error {
	return validateChoice(c.Options, answer)
}

func (c RadioControl) ValidateAnswer(answer any) error {
	return validateChoice(c.Options, answer)
}

func (c ToggleGroupControl) ValidateAnswer(answer any) error {
	return validateChoice(c.Options, answer)
}

func (c MultiSelectControl) ValidateAnswer(answer any) error {
	values, ok := toStrings(answer)
	if !ok || len(values) == 0 {
		return invalid("expected a non-empty list of options")
	}
	for _, v := range values {
		if !hasOption(c.Options, v) {
			return invalid("unknown option %q", v)
		}
	}
	return nil
}

func (c SliderControl) ValidateAnswer(answer any) error {
	v, ok := toFloat(answer)
	if !ok {
		return invalid("expected a number")
	}
	if c.Max > c.Min && (v < c.Min || v > c.Max) {
		return invalid("%v outside [%v, %v]", v, c.Min, c.Max)
	}
	return nil
}

func (c RangeSliderControl) ValidateAnswer(answer any) error {
	lo, hi, ok := toPair(answer)
	if !ok {
		return invalid("expected [min, max]")
	}
	if lo > hi {
		return invalid("min %v greater than max %v", lo, hi)
	}
	if c.Max > c.Min && (lo < c.Min || hi > c.Max) {
		return invalid("[%v, %v] outside [%v, %v]", lo, hi, c.Min, c.Max)
	}
	return nil
}

func (c CommunitySelectionControl) ValidateAnswer(answer any) error {
	values, ok := toStrings(answer)
	if !ok {
		if s, isString := answer.(string); isString {
			values = []string{s}
		} else {
			return invalid("expected community ids")
		}
	}
	if len(c.Communities) == 0 {
		return nil
	}
	for _, v := range values {
		found := false
		for _, community := range c.Communities {
			if community.ID == v {
				found = true
				break
			}
		}
		if !found {
			return invalid("unknown community %q", v)
		}
	}
	return nil
}

func (c LocationProximityControl) ValidateAnswer(answer any) error {
	switch v := answer.(type) {
	case map[string]any:
		if len(v) == 0 {
			return invalid("expected a location")
		}
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return invalid("expected a location")
		}
		return nil
	}
	return invalid("expected a location object")
}

func (c TagsControl) ValidateAnswer(answer any) error {
	if _, ok := toStrings(answer); !ok {
		return invalid("expected a list of tags")
	}
	return nil
}

func validateChoice(options []Option, answer any) error {
	var value string
	switch v := answer.(type) {
	case string:
		value = v
	case float64, int, json.Number:
		f, _ := toFloat(v)
		value = strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return invalid("expected a single option")
	}
	if strings.TrimSpace(value) == "" {
		return invalid("expected a single option")
	}
	if len(options) > 0 && !hasOption(options, value) {
		return invalid("unknown option %q", value)
	}
	return nil
}

func hasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toPair(v any) (float64, float64, bool) {
	switch p := v.(type) {
	case [2]float64:
		return p[0], p[1], true
	case []float64:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case []any:
		if len(p) == 2 {
			lo, ok1 := toFloat(p[0])
			hi, ok2 := toFloat(p[1])
			return lo, hi, ok1 && ok2
		}
	}
	return 0, 0, false
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

// FormatAnswer renders an answer for summaries and chat bubbles
func FormatAnswer(value any, q *Question) string {
	unit := q.Unit()

	if lo, hi, ok := toPair(value); ok {
		return strings.TrimSpace(fmt.Sprintf("%s - %s %s", formatNumber(lo), formatNumber(hi), unit))
	}

	switch v := value.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if loc, ok := v["location"].(map[string]any); ok {
			if addr, ok := loc["address"].(string); ok && addr != "" {
				return addr
			}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case string:
		if _, err := strconv.ParseFloat(v, 64); err == nil && unit != "" {
			return v + " " + unit
		}
		return v
	}

	if f, ok := toFloat(value); ok {
		return strings.TrimSpace(formatNumber(f) + " " + unit)
	}
	return fmt.Sprint(value)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
