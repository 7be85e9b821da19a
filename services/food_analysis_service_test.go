package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	text string
	err  error
}

func (p *fakeProvider) GenerateContent(_ context.Context, _, _ string) (string, error) {
	return p.text, p.err
}

func analyze(t *testing.T, text string) *FoodAnalysis {
	t.Helper()
	svc := NewFoodAnalysisService(&fakeProvider{text: text}, nil)
	return svc.AnalyzeName(context.Background(), "apple")
}

func TestNormalizeFencedJSON(t *testing.T) {
	res := analyze(t, "Here is the analysis:\n```json\n"+
		`{"foodName": "Apple", "calories": 95, "servingSize": "1 medium", "healthScore": 9,
		  "nutritionFacts": {"protein": 0.5, "carbs": 25, "fat": 0.3}}`+
		"\n```\nEnjoy!")

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Equal(t, "Apple", res.Food.Name)
	assert.Equal(t, 95.0, res.Food.Calories)
	assert.Equal(t, 0.5, res.Food.Protein)
	assert.Equal(t, 25.0, res.Food.Carbs)
	assert.Equal(t, 0.3, res.Food.Fat)
	assert.Equal(t, "1 medium", res.Food.ServingSize)
	if assert.NotNil(t, res.Food.HealthScore) {
		assert.Equal(t, 9, *res.Food.HealthScore)
	}
}

func TestNormalizeBareJSONInProse(t *testing.T) {
	res := analyze(t, `Sure! {"foodName": "Banana", "calories": 105, "nutritionFacts": {"protein": 1.3, "carbs": 27, "fat": 0.4}} Hope that helps.`)

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Equal(t, "Banana", res.Food.Name)
	assert.Equal(t, 105.0, res.Food.Calories)
}

func TestNormalizeFlattenedMacros(t *testing.T) {
	res := analyze(t, `{"foodName": "Oatmeal", "calories": 150, "protein": 5, "carbs": 27, "fat": 3}`)

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Equal(t, 5.0, res.Food.Protein)
	assert.Equal(t, 27.0, res.Food.Carbs)
	assert.Equal(t, 3.0, res.Food.Fat)
}

func TestNormalizeCoercesUnitSuffixedNumbers(t *testing.T) {
	res := analyze(t, `{"foodName": "Toast", "calories": "120 kcal", "nutritionFacts": {"protein": "4g", "carbs": "22", "fat": "1.5"}}`)

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Equal(t, 120.0, res.Food.Calories)
	assert.Equal(t, 4.0, res.Food.Protein)
	assert.Equal(t, 22.0, res.Food.Carbs)
	assert.Equal(t, 1.5, res.Food.Fat)
}

func TestNormalizeClampsNegativeMacros(t *testing.T) {
	res := analyze(t, `{"foodName": "Glitch", "calories": -40, "nutritionFacts": {"protein": -1, "carbs": 10, "fat": 0}}`)

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Zero(t, res.Food.Calories)
	assert.Zero(t, res.Food.Protein)
	assert.Equal(t, 10.0, res.Food.Carbs)
}

func TestNormalizeRejectsMissingName(t *testing.T) {
	res := analyze(t, `{"calories": 100, "nutritionFacts": {"protein": 2, "carbs": 3, "fat": 4}}`)

	assert.Equal(t, AnalysisMalformed, res.Status)
	assert.Nil(t, res.Food)
	assert.NotEmpty(t, res.RawText)
}

func TestNormalizeGarbageIsMalformed(t *testing.T) {
	res := analyze(t, "I could not identify the food in this image, sorry.")

	assert.Equal(t, AnalysisMalformed, res.Status)
	assert.Nil(t, res.Food)
	assert.Contains(t, res.RawText, "could not identify")
}

func TestNormalizeDropsOutOfRangeHealthScore(t *testing.T) {
	res := analyze(t, `{"foodName": "Candy", "calories": 200, "healthScore": 42, "nutritionFacts": {"protein": 0, "carbs": 50, "fat": 2}}`)

	assert.Equal(t, AnalysisParsed, res.Status)
	assert.Nil(t, res.Food.HealthScore)
}

func TestProviderErrorIsTagged(t *testing.T) {
	svc := NewFoodAnalysisService(&fakeProvider{err: errors.New("quota exceeded")}, nil)

	res := svc.AnalyzeName(context.Background(), "apple")
	assert.Equal(t, AnalysisProviderError, res.Status)
	assert.Contains(t, res.Reason, "quota exceeded")
	assert.Nil(t, res.Food)
}
