package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFeature(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"North Facing", "north-facing"},
		{"north-facing", "north-facing"},
		{"Vastu", "vastu-compliant"},
		{"pets allowed", "pet-friendly"},
		{"Covered Parking", "parking"},
		{"vastu_compliant", "vastu-compliant"},
		{"swimming_pool", "pool"},
		{"  Rooftop  Terrace Deck ", "rooftop-terrace-deck"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFeature(tt.input))
		})
	}
}

func TestNormalizeFeatures_DropsDuplicates(t *testing.T) {
	got := NormalizeFeatures([]string{"Garden", "lawn", "parking", "", "car park"})
	assert.Equal(t, []string{"garden", "parking"}, got)
}

func TestFuzzyMatchFeature(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		feature   string
		want      bool
	}{
		{"exact", "garden", "garden", true},
		{"contains", "parking", "2 covered parking", true},
		{"alias spelling", "vastu-compliant", "Vastu compliant layout", true},
		{"alias from requested spelling", "pets", "Pet friendly society", true},
		{"underscored feature", "pet-friendly", "pet_friendly", true},
		{"no match", "pool", "garden", false},
		{"empty", "", "garden", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatchFeature(tt.requested, tt.feature))
		})
	}
}

func TestBuildFuzzyFeatureQuery(t *testing.T) {
	cond, params, next := BuildFuzzyFeatureQuery("special_features", []string{"garden"}, 3)

	assert.Equal(t,
		"EXISTS (SELECT 1 FROM jsonb_array_elements_text(special_features) elem WHERE elem ILIKE $3 OR elem ILIKE $4 OR elem ILIKE $5)",
		cond)
	assert.Equal(t, []interface{}{"%garden%", "%lawn%", "%private_garden%"}, params)
	assert.Equal(t, 6, next)

	cond, params, next = BuildFuzzyFeatureQuery("special_features", nil, 3)
	assert.Empty(t, cond)
	assert.Nil(t, params)
	assert.Equal(t, 3, next)
}
