package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intake/internal/catalog"
	"property-intake/internal/model"
)

func testQuestions() []model.Question {
	radio := model.RadioControl{Options: []model.Option{{Value: "buy"}, {Value: "rent"}}}
	return []model.Question{
		{ID: "special_requests", Control: model.TagsControl{}},
		{ID: "req_type", Required: true, Control: radio},
		{ID: "bedroom_count", Required: true, Control: model.ToggleGroupControl{}},
		{ID: "furnishing_status", Control: model.ToggleGroupControl{}},
	}
}

func emptyContext() model.ConversationContext {
	return model.ConversationContext{AllAnswers: map[string]any{}}
}

func TestSelectNextQuestion_RequiredFirst(t *testing.T) {
	next := SelectNextQuestion(emptyContext(), testQuestions())
	require.NotNil(t, next)
	assert.Equal(t, "req_type", next.ID)
}

func TestSelectNextQuestion_SkipsAsked(t *testing.T) {
	questions := testQuestions()
	ctx := emptyContext()

	for i := 0; i < len(questions); i++ {
		next := SelectNextQuestion(ctx, questions)
		require.NotNil(t, next)
		assert.False(t, ctx.Asked(next.ID), "returned already asked question %s", next.ID)
		ctx.AskedQuestionIDs = append(ctx.AskedQuestionIDs, next.ID)
	}
	assert.Nil(t, SelectNextQuestion(ctx, questions))
	assert.Equal(t, []string{"req_type", "bedroom_count", "special_requests", "furnishing_status"}, ctx.AskedQuestionIDs)
}

func TestSelectNextQuestion_ExtractedBHKExcludesBedroomCount(t *testing.T) {
	ctx := emptyContext()
	ctx.ExtractedCriteria = criteriaOf(3, "")
	ctx.AskedQuestionIDs = []string{"req_type"}

	next := SelectNextQuestion(ctx, testQuestions())
	require.NotNil(t, next)
	assert.NotEqual(t, "bedroom_count", next.ID)
	assert.Equal(t, "special_requests", next.ID)
}

func TestSelectNextQuestion_CriteriaMapping(t *testing.T) {
	budget := [2]float64{1, 2}
	ctx := emptyContext()
	ctx.ExtractedCriteria = model.Criteria{
		ReqType:          strPtr("buy"),
		Budget:           &budget,
		PropertyType:     strPtr("apartment"),
		PropertyStatus:   strPtr("ready_to_move"),
		FurnishingStatus: strPtr("unfurnished"),
	}

	questions := catalog.Default().Set(catalog.Set3BHKIndiranagar)
	next := SelectNextQuestion(ctx, questions)
	require.NotNil(t, next)
	assert.Equal(t, "special_requests", next.ID)

	ctx.AllAnswers["special_requests"] = []any{"garden"}
	next = SelectNextQuestion(ctx, questions)
	require.NotNil(t, next)
	assert.Equal(t, "proximity_location", next.ID)
}

func TestSelectNextQuestion_BlankAnswerStillAsks(t *testing.T) {
	ctx := emptyContext()
	ctx.AskedQuestionIDs = []string{"req_type", "bedroom_count"}
	ctx.AllAnswers["special_requests"] = ""

	next := SelectNextQuestion(ctx, testQuestions())
	require.NotNil(t, next)
	assert.Equal(t, "special_requests", next.ID)
}

func TestSelectNextQuestion_Empty(t *testing.T) {
	assert.Nil(t, SelectNextQuestion(emptyContext(), nil))
}

func TestIsConversationComplete(t *testing.T) {
	questions := testQuestions()

	tests := []struct {
		name  string
		asked []string
		want  bool
	}{
		{"nothing asked", nil, false},
		{"one required asked", []string{"req_type"}, false},
		{"all required asked", []string{"bedroom_count", "req_type"}, true},
		{"optional only", []string{"special_requests", "furnishing_status"}, false},
		{"superset", []string{"req_type", "bedroom_count", "special_requests", "unrelated"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := emptyContext()
			ctx.AskedQuestionIDs = tt.asked
			assert.Equal(t, tt.want, IsConversationComplete(ctx, questions))
		})
	}

	assert.True(t, IsConversationComplete(emptyContext(), []model.Question{{ID: "x", Control: model.TextControl{}}}))
}

func TestCompletionPercentage(t *testing.T) {
	questions := catalog.Default().Set(catalog.Set3BHKIndiranagar) // three required

	ctx := emptyContext()
	assert.Equal(t, 0, CompletionPercentage(ctx, questions))

	ctx.AskedQuestionIDs = []string{"req_type"}
	assert.Equal(t, 33, CompletionPercentage(ctx, questions))

	ctx.AskedQuestionIDs = []string{"req_type", "budget"}
	assert.Equal(t, 67, CompletionPercentage(ctx, questions))

	ctx.AskedQuestionIDs = []string{"req_type", "budget", "property_type"}
	assert.Equal(t, 100, CompletionPercentage(ctx, questions))

	assert.Equal(t, 0, CompletionPercentage(ctx, []model.Question{{ID: "x", Control: model.TextControl{}}}))
}
