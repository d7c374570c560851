package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intake/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func ids(questions []model.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

func TestDefault_LoadsEmbeddedSets(t *testing.T) {
	c := Default()

	assert.Equal(t, []SetName{Set3BHKIndiranagar, SetVilla, SetGeneral}, c.Sets())
	assert.Equal(t, []string{
		"req_type", "budget", "property_type", "property_status", "furnishing_status",
		"special_requests", "proximity_location", "community_preference",
	}, ids(c.Set(Set3BHKIndiranagar)))
	assert.Equal(t, []string{
		"req_type", "budget", "bedroom_count", "plot_size", "proximity_location", "community_preference",
	}, ids(c.Set(SetVilla)))
	assert.Equal(t, []string{"location", "bedroom_count", "area_sqft", "community_preference"}, ids(c.Set(SetGeneral)))
}

func TestDefault_ControlParameters(t *testing.T) {
	c := Default()

	budget, ok := c.Find("budget", model.Criteria{BHK: intPtr(3), Location: strPtr("Indiranagar")})
	require.True(t, ok)
	require.True(t, budget.Required)
	slider, ok := budget.Control.(model.RangeSliderControl)
	require.True(t, ok, "budget should be a range slider, got %T", budget.Control)
	assert.Equal(t, 0.5, slider.Min)
	assert.Equal(t, 5.0, slider.Max)
	assert.Equal(t, 0.1, slider.Step)
	assert.Equal(t, "Cr", slider.Unit)
	require.NotNil(t, slider.DefaultValue)
	assert.Equal(t, [2]float64{1.2, 2.5}, *slider.DefaultValue)
	assert.NotEmpty(t, slider.Histogram)

	villaBudget, ok := c.Find("budget", model.Criteria{PropertyType: strPtr("villa")})
	require.True(t, ok)
	assert.Equal(t, 15.0, villaBudget.Control.(model.RangeSliderControl).Max)

	proximity, ok := c.Find("proximity_location", model.Criteria{})
	require.True(t, ok)
	loc := proximity.Control.(model.LocationProximityControl)
	require.NotNil(t, loc.MapCenter)
	assert.Equal(t, 12.9716, loc.MapCenter.Lat)
	assert.Len(t, loc.Options, 5)
}

func TestSetFor(t *testing.T) {
	tests := []struct {
		name     string
		criteria model.Criteria
		want     SetName
	}{
		{"3bhk indiranagar", model.Criteria{BHK: intPtr(3), Location: strPtr("Indiranagar")}, Set3BHKIndiranagar},
		{"location matched by substring", model.Criteria{BHK: intPtr(3), Location: strPtr("HAL 2nd Stage, Indiranagar")}, Set3BHKIndiranagar},
		{"2bhk indiranagar is general", model.Criteria{BHK: intPtr(2), Location: strPtr("Indiranagar")}, SetGeneral},
		{"villa", model.Criteria{PropertyType: strPtr("Villa")}, SetVilla},
		{"3bhk indiranagar villa prefers bhk rule", model.Criteria{BHK: intPtr(3), Location: strPtr("indiranagar"), PropertyType: strPtr("villa")}, Set3BHKIndiranagar},
		{"nothing known", model.Criteria{}, SetGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetFor(tt.criteria))
		})
	}
}

func TestFind_FallsBackToOtherSets(t *testing.T) {
	c := Default()

	q, ok := c.Find("plot_size", model.Criteria{})
	require.True(t, ok)
	assert.Equal(t, "plot_size", q.ID)

	_, ok = c.Find("does_not_exist", model.Criteria{})
	assert.False(t, ok)
}

func TestSet_ReturnsCopy(t *testing.T) {
	c := Default()
	set := c.Set(SetGeneral)
	set[0].ID = "mutated"

	assert.Equal(t, "location", c.Set(SetGeneral)[0].ID)
}

func TestAll_UniqueIDs(t *testing.T) {
	all := Default().All()
	seen := map[string]bool{}
	for _, q := range all {
		assert.False(t, seen[q.ID], "duplicate %s", q.ID)
		seen[q.ID] = true
	}
	assert.True(t, seen["location"])
	assert.True(t, seen["plot_size"])
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	doc := `{"sets":[{"name":"x","questions":[
		{"id":"a","question":"?","controlType":"text","required":false,"data":{}},
		{"id":"a","question":"?","controlType":"text","required":false,"data":{}}]}]}`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParse_RejectsUnknownControl(t *testing.T) {
	doc := `{"sets":[{"name":"x","questions":[{"id":"a","question":"?","controlType":"dial","required":false}]}]}`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}
