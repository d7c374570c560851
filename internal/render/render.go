// Package render draws chat messages and question controls for the terminal client.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"property-intake/internal/model"
)

var (
	userColor     = color.New(color.FgCyan)
	systemColor   = color.New(color.FgYellow)
	questionColor = color.New(color.FgGreen, color.Bold)
	answerColor   = color.New(color.FgHiBlack)
	hintColor     = color.New(color.FgMagenta)
)

// Message writes one chat message
func Message(w io.Writer, m model.ChatMessage) {
	switch m.Type {
	case model.MessageUser:
		userColor.Fprintf(w, "> %s\n", m.Content)
	case model.MessageSystem:
		systemColor.Fprintf(w, "%s\n", m.Content)
	case model.MessageTyping:
		answerColor.Fprintln(w, "...")
	case model.MessageQuestion:
		if m.Question == nil {
			return
		}
		if m.State == model.QuestionAnswered {
			answerColor.Fprintf(w, "✓ %s: %s\n", label(*m.Question), model.FormatAnswer(m.Answer, m.Question))
			return
		}
		Question(w, *m.Question)
	}
}

// Question writes the question text and the choices of its control
func Question(w io.Writer, q model.Question) {
	required := ""
	if q.Required {
		required = " *"
	}
	questionColor.Fprintf(w, "%s%s\n", q.Text, required)
	if q.HelpText != "" {
		hintColor.Fprintf(w, "  %s\n", q.HelpText)
	}

	switch c := q.Control.(type) {
	case model.TextControl:
		hint(w, c.Placeholder, "type your answer")
	case model.SelectControl:
		options(w, c.Options)
		hintColor.Fprintln(w, "  pick one number")
	case model.RadioControl:
		options(w, c.Options)
		hintColor.Fprintln(w, "  pick one number")
	case model.ToggleGroupControl:
		options(w, c.Options)
		hintColor.Fprintln(w, "  pick one number")
	case model.MultiSelectControl:
		options(w, c.Options)
		hintColor.Fprintln(w, "  pick numbers separated by commas")
	case model.SliderControl:
		fmt.Fprintf(w, "  %s to %s %s", num(c.Min), num(c.Max), c.Unit)
		if c.DefaultValue != nil {
			fmt.Fprintf(w, " (default %s)", num(*c.DefaultValue))
		}
		fmt.Fprintln(w)
		histogram(w, c.ChartTitle, c.Histogram)
	case model.RangeSliderControl:
		fmt.Fprintf(w, "  %s to %s %s", num(c.Min), num(c.Max), c.Unit)
		if c.RecommendedValue != nil {
			fmt.Fprintf(w, " (recommended %s-%s)", num(c.RecommendedValue[0]), num(c.RecommendedValue[1]))
		}
		fmt.Fprintln(w)
		histogram(w, c.ChartTitle, c.Histogram)
		hintColor.Fprintln(w, "  enter min-max")
	case model.CommunitySelectionControl:
		for i, cm := range c.Communities {
			fmt.Fprintf(w, "  %d) %s, %s (%s-%s Cr, %d listings)\n",
				i+1, cm.Name, cm.Neighborhood, num(cm.PriceRange.MinCr), num(cm.PriceRange.MaxCr), cm.PropertyCount)
		}
		hintColor.Fprintln(w, "  pick numbers separated by commas")
	case model.LocationProximityControl:
		options(w, c.Options)
		hintColor.Fprintln(w, "  pick a number or type an address")
	case model.TagsControl:
		if len(c.Suggestions) > 0 {
			fmt.Fprintf(w, "  suggestions: %s\n", strings.Join(c.Suggestions, ", "))
		}
		hint(w, c.Placeholder, "comma separated, empty for none")
	default:
		fmt.Fprintf(w, "  (unsupported control %q)\n", q.ControlType())
	}

	if q.MarketInsights != "" {
		hintColor.Fprintf(w, "  💡 %s\n", q.MarketInsights)
	}
}

// ParseAnswer turns terminal input into the answer shape the web client sends for the control,
// then validates it
func ParseAnswer(q model.Question, input string) (any, error) {
	input = strings.TrimSpace(input)
	var answer any

	switch c := q.Control.(type) {
	case model.TextControl:
		answer = input
	case model.SelectControl:
		answer = pick(c.Options, input)
	case model.RadioControl:
		answer = pick(c.Options, input)
	case model.ToggleGroupControl:
		answer = pick(c.Options, input)
	case model.MultiSelectControl:
		values := []any{}
		for _, part := range splitList(input) {
			values = append(values, pick(c.Options, part))
		}
		answer = values
	case model.SliderControl:
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: expected a number", model.ErrInvalidAnswer)
		}
		answer = v
	case model.RangeSliderControl:
		lo, hi, err := parseRange(input)
		if err != nil {
			return nil, err
		}
		answer = []any{lo, hi}
	case model.CommunitySelectionControl:
		ids := []any{}
		for _, part := range splitList(input) {
			if n, err := strconv.Atoi(part); err == nil && n >= 1 && n <= len(c.Communities) {
				ids = append(ids, c.Communities[n-1].ID)
				continue
			}
			ids = append(ids, part)
		}
		answer = ids
	case model.LocationProximityControl:
		if input == "" {
			return nil, fmt.Errorf("%w: expected a location", model.ErrInvalidAnswer)
		}
		if value, ok := matchOption(c.Options, input); ok {
			answer = map[string]any{"option": value}
		} else {
			answer = map[string]any{"option": "custom", "location": map[string]any{"address": input}}
		}
	case model.TagsControl:
		tags := []any{}
		for _, part := range splitList(input) {
			tags = append(tags, part)
		}
		answer = tags
	default:
		return nil, fmt.Errorf("%w: unsupported control %q", model.ErrInvalidAnswer, q.ControlType())
	}

	if err := q.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func label(q model.Question) string {
	if q.Label != "" {
		return q.Label
	}
	return q.Text
}

func options(w io.Writer, opts []model.Option) {
	for i, o := range opts {
		if o.Count > 0 {
			fmt.Fprintf(w, "  %d) %s (%d)\n", i+1, o.Label, o.Count)
			continue
		}
		fmt.Fprintf(w, "  %d) %s\n", i+1, o.Label)
	}
}

func histogram(w io.Writer, title string, bins []model.HistogramBin) {
	if len(bins) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintf(w, "  %s\n", title)
	}
	peak := 0
	for _, b := range bins {
		if b.Count > peak {
			peak = b.Count
		}
	}
	for _, b := range bins {
		width := 0
		if peak > 0 {
			width = b.Count * 20 / peak
		}
		fmt.Fprintf(w, "  %-12s %s %d\n", b.Range, strings.Repeat("█", width), b.Count)
	}
}

func hint(w io.Writer, text, fallback string) {
	if text == "" {
		text = fallback
	}
	hintColor.Fprintf(w, "  %s\n", text)
}

// pick resolves an option, returning the input unchanged when nothing matches
func pick(opts []model.Option, input string) string {
	if value, ok := matchOption(opts, input); ok {
		return value
	}
	return input
}

// matchOption accepts a 1-based option number, an option value or an option label
func matchOption(opts []model.Option, input string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(opts) {
		return opts[n-1].Value, true
	}
	for _, o := range opts {
		if strings.EqualFold(o.Value, input) || strings.EqualFold(o.Label, input) {
			return o.Value, true
		}
	}
	return "", false
}

func splitList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseRange(input string) (float64, float64, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '-' || r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: expected min-max", model.ErrInvalidAnswer)
	}
	lo, err1 := strconv.ParseFloat(fields[0], 64)
	hi, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: expected min-max", model.ErrInvalidAnswer)
	}
	return lo, hi, nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
